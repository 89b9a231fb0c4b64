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

package store

import (
	"context"

	"github.com/clusterscope/clusterscope/pkg/model"
)

// ClusterStore persists Cluster records keyed by name.
type ClusterStore interface {
	FindClusterByName(ctx context.Context, name string) (*model.Cluster, error)
	FindClusterByID(ctx context.Context, id string) (*model.Cluster, error)
	ListClusters(ctx context.Context) ([]*model.Cluster, error)
	UpsertCluster(ctx context.Context, c *model.Cluster) error
}

// EnvironmentStore persists Environment records keyed by (name, clusterID).
type EnvironmentStore interface {
	FindEnvironment(ctx context.Context, name, clusterID string) (*model.Environment, error)
	FindEnvironmentByID(ctx context.Context, id string) (*model.Environment, error)
	// ListEnvironments returns every environment when clusterID is empty.
	ListEnvironments(ctx context.Context, clusterID string) ([]*model.Environment, error)
	UpsertEnvironment(ctx context.Context, e *model.Environment) error
	// AddEnvironmentNamespace links a namespace to an environment. The link
	// is never removed and inserting it twice is a no-op.
	AddEnvironmentNamespace(ctx context.Context, environmentID, namespaceUID string) error
}

// NamespaceStore persists Namespace records keyed by (name, clusterID).
type NamespaceStore interface {
	FindNamespace(ctx context.Context, name, clusterID string) (*model.Namespace, error)
	FindNamespaceByUID(ctx context.Context, uid string) (*model.Namespace, error)
	// ListNamespaces returns every namespace when clusterID is empty.
	ListNamespaces(ctx context.Context, clusterID string) ([]*model.Namespace, error)
	UpsertNamespace(ctx context.Context, n *model.Namespace) error
}

// Store is the persistence contract of the reconciliation engine.
//
// Find methods return (nil, nil) when the record does not exist. Upserts are
// keyed by natural identity: when a record with the same natural key already
// exists it is updated in place and the caller's record adopts the stored
// surrogate id, so concurrent creators converge on a single row.
type Store interface {
	ClusterStore
	EnvironmentStore
	NamespaceStore
	Close() error
}
