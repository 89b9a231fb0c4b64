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

package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/clusterscope/clusterscope/pkg/controlplane"
	cserrors "github.com/clusterscope/clusterscope/pkg/errors"
	"github.com/clusterscope/clusterscope/pkg/model"
	"github.com/clusterscope/clusterscope/pkg/store"
)

// ClusterReconciler runs one reconciliation pass for a declared cluster.
type ClusterReconciler struct {
	store      store.Store
	connector  controlplane.Connector
	namespaces *NamespaceReconciler
}

// NewClusterReconciler returns a ClusterReconciler.
func NewClusterReconciler(st store.Store, connector controlplane.Connector, namespaces *NamespaceReconciler) *ClusterReconciler {
	return &ClusterReconciler{
		store:      st,
		connector:  connector,
		namespaces: namespaces,
	}
}

// Reconcile opens a session to the cluster, refreshes its record and
// reconciles its environments and namespaces.
//
// Failing node or namespace listings degrade the record instead of failing:
// the node count is kept, and a failed namespace listing marks the cluster
// unsynced and every namespace absent. Session and store failures are
// returned with code RECONCILE_FAILED.
func (r *ClusterReconciler) Reconcile(ctx context.Context, desc model.ClusterDescriptor) (err error) {
	start := time.Now()
	defer func() {
		clusterReconcileDuration.Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = "error"
		}
		clusterReconciles.WithLabelValues(result).Inc()
	}()

	fail := func(msg string, cause error) error {
		return cserrors.WrapWithContext(cserrors.ErrCodeReconcileFailed, msg, cause,
			map[string]any{"cluster": desc.Name, "clusterId": desc.ID})
	}

	cp, err := r.connector.Connect(desc)
	if err != nil {
		return fail("failed to open control-plane session", err)
	}

	cluster, _, err := findOrCreate(ctx,
		func(ctx context.Context) (*model.Cluster, error) {
			return r.store.FindClusterByName(ctx, desc.Name)
		},
		func() *model.Cluster {
			return &model.Cluster{Name: desc.Name, EnvironmentIDs: []string{}}
		},
		r.store.UpsertCluster,
	)
	if err != nil {
		return fail("failed to load cluster record", err)
	}

	if nodes, err := cp.ListNodes(ctx); err != nil {
		degradedCalls.WithLabelValues(controlplane.CallListNodes).Inc()
		slog.Warn("keeping previous node count",
			"cluster", desc.Name,
			"error", err)
	} else {
		cluster.NumberOfNodes = &nodes
	}

	observed, err := cp.ListNamespaces(ctx)
	synced := err == nil
	if !synced {
		degradedCalls.WithLabelValues(controlplane.CallListNamespaces).Inc()
		slog.Warn("namespace listing failed, treating every namespace as absent",
			"cluster", desc.Name,
			"error", err)
		observed = map[string]string{}
	}

	envIDs, err := r.namespaces.Reconcile(ctx, cluster, desc, cp, observed)
	if err != nil {
		return fail("failed to reconcile environments", err)
	}

	cluster.Synced = synced
	cluster.EnvironmentIDs = envIDs
	if err := r.store.UpsertCluster(ctx, cluster); err != nil {
		return fail("failed to persist cluster record", err)
	}

	slog.Debug("cluster reconciled",
		"cluster", desc.Name,
		"synced", synced,
		"environments", len(envIDs),
		"duration", time.Since(start).String())
	return nil
}
