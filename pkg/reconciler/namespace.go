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
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/clusterscope/clusterscope/pkg/controlplane"
	"github.com/clusterscope/clusterscope/pkg/model"
	"github.com/clusterscope/clusterscope/pkg/monitoring"
	"github.com/clusterscope/clusterscope/pkg/store"
)

// Default location of the deployment-version marker.
const (
	DefaultConfigMapName = "sd-versions"
	DefaultDataField     = "solution-descriptors-summary"
)

// VersionMarker names the config map and data field that carry the
// deployment version of a namespace.
type VersionMarker struct {
	ConfigMapName string
	DataField     string
}

// NamespaceReconciler reconciles the declared environments and namespaces of
// one cluster against the namespaces observed on its control plane.
type NamespaceReconciler struct {
	store      store.Store
	monitoring monitoring.Collaborator
	marker     VersionMarker
	newUID     func() string
}

// NewNamespaceReconciler returns a reconciler. A nil collaborator records
// empty monitoring snapshots; empty marker fields take the defaults.
func NewNamespaceReconciler(st store.Store, mon monitoring.Collaborator, marker VersionMarker) *NamespaceReconciler {
	if marker.ConfigMapName == "" {
		marker.ConfigMapName = DefaultConfigMapName
	}
	if marker.DataField == "" {
		marker.DataField = DefaultDataField
	}
	return &NamespaceReconciler{
		store:      st,
		monitoring: mon,
		marker:     marker,
		newUID:     func() string { return uuid.New().String() },
	}
}

// Reconcile processes every declared environment of desc in declaration
// order and returns the ids of the environments it processed.
//
// observed maps the names of the namespaces that exist on the cluster to
// their UIDs; it is empty when the namespace listing failed. Namespaces are
// processed sequentially because the version aggregate and install date
// accumulate across them.
func (r *NamespaceReconciler) Reconcile(ctx context.Context, cluster *model.Cluster, desc model.ClusterDescriptor,
	cp controlplane.Adapter, observed map[string]string) ([]string, error) {

	ids := make([]string, 0, len(desc.Environments))
	for _, envDesc := range desc.Environments {
		env, err := r.reconcileEnvironment(ctx, cluster, desc, envDesc, cp, observed)
		if err != nil {
			return nil, fmt.Errorf("environment %s: %w", envDesc.Name, err)
		}
		ids = append(ids, env.ID)
	}
	return ids, nil
}

func (r *NamespaceReconciler) reconcileEnvironment(ctx context.Context, cluster *model.Cluster, desc model.ClusterDescriptor,
	envDesc model.EnvironmentDescriptor, cp controlplane.Adapter, observed map[string]string) (*model.Environment, error) {

	env, _, err := findOrCreate(ctx,
		func(ctx context.Context) (*model.Environment, error) {
			return r.store.FindEnvironment(ctx, envDesc.Name, cluster.ID)
		},
		func() *model.Environment {
			return &model.Environment{Name: envDesc.Name, ClusterID: cluster.ID}
		},
		r.store.UpsertEnvironment,
	)
	if err != nil {
		return nil, err
	}

	var versions strings.Builder
	for _, nsDesc := range envDesc.Namespaces {
		if err := r.reconcileNamespace(ctx, cluster, env, nsDesc.Name, cp, observed, &versions); err != nil {
			return nil, fmt.Errorf("namespace %s: %w", nsDesc.Name, err)
		}
	}
	env.DeploymentVersion = versions.String()
	env.MonitoringData = r.collectMonitoring(ctx, cluster, desc, env)

	if err := r.store.UpsertEnvironment(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

func (r *NamespaceReconciler) reconcileNamespace(ctx context.Context, cluster *model.Cluster, env *model.Environment,
	name string, cp controlplane.Adapter, observed map[string]string, versions *strings.Builder) error {

	uid, exists := observed[name]

	ns, created, err := findOrCreate(ctx,
		func(ctx context.Context) (*model.Namespace, error) {
			found, err := r.store.FindNamespace(ctx, name, cluster.ID)
			if err != nil || found != nil || !exists || uid == "" {
				return found, err
			}
			// UIDs repeat across clusters restored from the same etcd snapshot.
			owner, err := r.store.FindNamespaceByUID(ctx, uid)
			if err != nil {
				return nil, err
			}
			if owner != nil {
				slog.Warn("namespace uid already recorded, assigning a new one",
					"cluster", cluster.Name,
					"namespace", name,
					"uid", uid,
					"ownerCluster", owner.ClusterID)
				uid = r.newUID()
			}
			return nil, nil
		},
		func() *model.Namespace {
			if !exists || uid == "" {
				uid = r.newUID()
			}
			return &model.Namespace{UID: uid, Name: name, ClusterID: cluster.ID, EnvironmentID: env.ID, ExistsInK8s: exists}
		},
		r.store.UpsertNamespace,
	)
	if err != nil {
		return err
	}

	if created && env.AddNamespace(ns.UID) {
		if err := r.store.AddEnvironmentNamespace(ctx, env.ID, ns.UID); err != nil {
			return err
		}
	}

	ns.ExistsInK8s = exists
	if err := r.store.UpsertNamespace(ctx, ns); err != nil {
		return err
	}
	if !exists {
		return nil
	}

	r.enrich(ctx, cluster, env, ns, cp, versions)
	return nil
}

// enrich folds the namespace's version marker into the environment.
func (r *NamespaceReconciler) enrich(ctx context.Context, cluster *model.Cluster, env *model.Environment,
	ns *model.Namespace, cp controlplane.Adapter, versions *strings.Builder) {

	maps, err := cp.ListConfigMaps(ctx, ns.Name, r.marker.ConfigMapName)
	if err != nil {
		degradedCalls.WithLabelValues(controlplane.CallListConfigMaps).Inc()
		slog.Warn("skipping version enrichment",
			"cluster", cluster.Name,
			"environment", env.Name,
			"namespace", ns.Name,
			"error", err)
		return
	}
	if len(maps) == 0 {
		return
	}
	cm := maps[0]

	if value := cm.Data[r.marker.DataField]; strings.TrimSpace(value) != "" && !strings.Contains(versions.String(), value) {
		versions.WriteString(value)
		versions.WriteString("\n")
	}

	created := cm.CreationTimestamp
	if created.IsZero() {
		return
	}
	if env.CleanInstallationDate == nil || created.Before(*env.CleanInstallationDate) {
		t := created.UTC()
		env.CleanInstallationDate = &t
	}
}

// collectMonitoring queries the collaborator with every namespace ever
// linked to the environment, not only the ones declared this cycle.
func (r *NamespaceReconciler) collectMonitoring(ctx context.Context, cluster *model.Cluster,
	desc model.ClusterDescriptor, env *model.Environment) map[string]string {

	if r.monitoring == nil {
		return map[string]string{}
	}

	names := make([]string, 0, len(env.NamespaceIDs))
	for _, uid := range env.NamespaceIDs {
		ns, err := r.store.FindNamespaceByUID(ctx, uid)
		if err != nil {
			slog.Warn("failed to resolve namespace for monitoring",
				"cluster", cluster.Name,
				"environment", env.Name,
				"uid", uid,
				"error", err)
			continue
		}
		if ns != nil {
			names = append(names, ns.Name)
		}
	}

	data, err := r.monitoring.Query(ctx, desc.MonitoringEndpoint, env.Name, cluster.Name, names)
	if err != nil {
		degradedCalls.WithLabelValues(callMonitoring).Inc()
		slog.Warn("monitoring query failed",
			"cluster", cluster.Name,
			"environment", env.Name,
			"error", err)
		return map[string]string{}
	}
	if data == nil {
		data = map[string]string{}
	}
	return data
}
