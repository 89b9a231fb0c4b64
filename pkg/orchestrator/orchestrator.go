// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	cserrors "github.com/clusterscope/clusterscope/pkg/errors"
	"github.com/clusterscope/clusterscope/pkg/inventory"
	"github.com/clusterscope/clusterscope/pkg/model"
	"github.com/clusterscope/clusterscope/pkg/workerpool"
)

// Cycle triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// ClusterReconciler reconciles a single declared cluster.
type ClusterReconciler interface {
	Reconcile(ctx context.Context, desc model.ClusterDescriptor) error
}

// ClusterLookup resolves stored cluster records by their record id.
type ClusterLookup interface {
	FindClusterByID(ctx context.Context, id string) (*model.Cluster, error)
}

// CycleStatus summarises the most recent cycle.
type CycleStatus struct {
	Trigger    string    `json:"trigger" yaml:"trigger"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
	Duration   string    `json:"duration" yaml:"duration"`
	Clusters   int       `json:"clusters" yaml:"clusters"`
	Succeeded  int       `json:"succeeded" yaml:"succeeded"`
	Failed     int       `json:"failed" yaml:"failed"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Orchestrator runs reconciliation cycles across every declared cluster.
type Orchestrator struct {
	source       inventory.Source
	reconciler   ClusterReconciler
	pool         *workerpool.Pool
	clusters     ClusterLookup
	initialCycle bool

	mu   sync.RWMutex
	last *CycleStatus
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInitialCycle controls whether Run starts with a cycle before the first
// tick. Defaults to true.
func WithInitialCycle(enabled bool) Option {
	return func(o *Orchestrator) {
		o.initialCycle = enabled
	}
}

// WithClusters lets SyncCluster accept stored cluster record ids in
// addition to inventory ids.
func WithClusters(l ClusterLookup) Option {
	return func(o *Orchestrator) {
		o.clusters = l
	}
}

// New returns an Orchestrator. The pool is owned by the caller.
func New(source inventory.Source, reconciler ClusterReconciler, pool *workerpool.Pool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:       source,
		reconciler:   reconciler,
		pool:         pool,
		initialCycle: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunCycle runs one manual cycle. See Cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	return o.Cycle(ctx, TriggerManual)
}

// Cycle fetches the inventory once and reconciles every cluster on the pool,
// returning when all of them are done.
//
// Only an inventory failure is returned, as INVENTORY_UNAVAILABLE, and no
// cluster is touched in that case. Per-cluster errors and panics are logged
// and counted.
func (o *Orchestrator) Cycle(ctx context.Context, trigger string) error {
	status := &CycleStatus{Trigger: trigger, StartedAt: time.Now().UTC()}
	defer o.finish(status)

	descriptors, err := o.fetch(ctx)
	if err != nil {
		status.Error = err.Error()
		slog.Error("aborting reconciliation cycle",
			"trigger", trigger,
			"error", err)
		return err
	}
	status.Clusters = len(descriptors)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, desc := range descriptors {
		wg.Add(1)
		err := o.pool.Submit(ctx, func() {
			defer wg.Done()
			if err := o.reconcileSafely(ctx, desc); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
			clusterTaskFailures.WithLabelValues("not_scheduled").Inc()
			slog.Error("failed to schedule cluster reconciliation",
				"cluster", desc.Name,
				"error", err)
		}
	}
	wg.Wait()

	status.Failed = failed
	status.Succeeded = status.Clusters - failed
	return nil
}

// SyncCluster reconciles the single cluster identified by clusterID,
// synchronously, and returns its error. clusterID is either the inventory id
// or, with WithClusters, the id of the stored record, which is matched to the
// inventory by cluster name. An unknown id yields NOT_FOUND.
func (o *Orchestrator) SyncCluster(ctx context.Context, clusterID string) error {
	descriptors, err := o.fetch(ctx)
	if err != nil {
		return err
	}

	desc, err := o.findDescriptor(ctx, descriptors, clusterID)
	if err != nil {
		return err
	}
	if desc == nil {
		return cserrors.NewWithContext(cserrors.ErrCodeNotFound,
			fmt.Sprintf("cluster %s is not in the inventory", clusterID),
			map[string]any{"clusterId": clusterID})
	}

	slog.Info("starting targeted cluster sync", "cluster", desc.Name, "clusterId", clusterID)
	return o.reconcileSafely(ctx, *desc)
}

func (o *Orchestrator) findDescriptor(ctx context.Context, descriptors []model.ClusterDescriptor, clusterID string) (*model.ClusterDescriptor, error) {
	for i := range descriptors {
		if descriptors[i].ID == clusterID {
			return &descriptors[i], nil
		}
	}
	if o.clusters == nil {
		return nil, nil
	}

	stored, err := o.clusters.FindClusterByID(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cluster %s: %w", clusterID, err)
	}
	if stored == nil {
		return nil, nil
	}
	for i := range descriptors {
		if descriptors[i].Name == stored.Name {
			return &descriptors[i], nil
		}
	}
	return nil, nil
}

// Run runs scheduled cycles every interval until ctx is done. Cycle errors
// are logged and never stop the loop.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	slog.Info("sync scheduler started", "interval", interval.String())

	if o.initialCycle {
		_ = o.Cycle(ctx, TriggerScheduled)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			_ = o.Cycle(ctx, TriggerScheduled)
		}
	}
}

// LastCycle returns the status of the most recently finished cycle.
func (o *Orchestrator) LastCycle() (CycleStatus, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return CycleStatus{}, false
	}
	return *o.last, true
}

func (o *Orchestrator) fetch(ctx context.Context) ([]model.ClusterDescriptor, error) {
	descriptors, err := o.source.Fetch(ctx)
	if err != nil {
		return nil, cserrors.Wrap(cserrors.ErrCodeInventoryUnavailable, "failed to fetch declared inventory", err)
	}
	return descriptors, nil
}

// reconcileSafely turns a panic in the reconciler into an error.
func (o *Orchestrator) reconcileSafely(ctx context.Context, desc model.ClusterDescriptor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			clusterTaskFailures.WithLabelValues("panic").Inc()
			slog.Error("cluster reconciliation panicked",
				"cluster", desc.Name,
				"panic", r,
				"stack", string(debug.Stack()))
			err = cserrors.New(cserrors.ErrCodeReconcileFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err = o.reconciler.Reconcile(ctx, desc); err != nil {
		clusterTaskFailures.WithLabelValues("error").Inc()
		slog.Error("cluster reconciliation failed",
			"cluster", desc.Name,
			"error", err)
	}
	return err
}

func (o *Orchestrator) finish(status *CycleStatus) {
	status.FinishedAt = time.Now().UTC()
	elapsed := status.FinishedAt.Sub(status.StartedAt)
	status.Duration = elapsed.String()

	result := "success"
	if status.Error != "" {
		result = "error"
	}
	cyclesTotal.WithLabelValues(status.Trigger, result).Inc()
	cycleDuration.Observe(elapsed.Seconds())
	lastCycleTimestamp.Set(float64(status.FinishedAt.Unix()))

	o.mu.Lock()
	o.last = status
	o.mu.Unlock()

	slog.Info("reconciliation cycle finished",
		"trigger", status.Trigger,
		"clusters", status.Clusters,
		"succeeded", status.Succeeded,
		"failed", status.Failed,
		"duration", status.Duration)
}
