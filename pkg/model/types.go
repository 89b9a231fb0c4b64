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

package model

import (
	"slices"
	"time"
)

// Cluster is the stored operational record of one Kubernetes control plane.
// Name is the natural key.
type Cluster struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Synced reports whether the last namespace listing against the cluster succeeded.
	Synced bool `json:"synced" yaml:"synced"`

	// NumberOfNodes is nil until a node listing has succeeded at least once.
	NumberOfNodes *int `json:"numberOfNodes,omitempty" yaml:"numberOfNodes,omitempty"`

	// EnvironmentIDs is rebuilt on every cycle, in declaration order.
	EnvironmentIDs []string `json:"environmentIds" yaml:"environmentIds"`
}

// Environment is a named group of namespaces declared against a cluster.
// (Name, ClusterID) is the natural key.
type Environment struct {
	ID                    string            `json:"id" yaml:"id"`
	Name                  string            `json:"name" yaml:"name"`
	ClusterID             string            `json:"clusterId" yaml:"clusterId"`
	CleanInstallationDate *time.Time        `json:"cleanInstallationDate,omitempty" yaml:"cleanInstallationDate,omitempty"`
	DeploymentVersion     string            `json:"deploymentVersion" yaml:"deploymentVersion"`
	MonitoringData        map[string]string `json:"monitoringData" yaml:"monitoringData"`

	// NamespaceIDs only grows. It is materialised from the
	// environment/namespace relation in insertion order.
	NamespaceIDs []string `json:"namespaceIds" yaml:"namespaceIds"`
}

// HasNamespace reports whether uid is already linked to the environment.
func (e *Environment) HasNamespace(uid string) bool {
	return slices.Contains(e.NamespaceIDs, uid)
}

// AddNamespace links uid to the environment once.
func (e *Environment) AddNamespace(uid string) bool {
	if e.HasNamespace(uid) {
		return false
	}
	e.NamespaceIDs = append(e.NamespaceIDs, uid)
	return true
}

// Namespace is a Kubernetes namespace tracked with its declared identity.
// (Name, ClusterID) is the natural key; UID is the primary key.
type Namespace struct {
	UID           string `json:"uid" yaml:"uid"`
	Name          string `json:"name" yaml:"name"`
	ClusterID     string `json:"clusterId" yaml:"clusterId"`
	EnvironmentID string `json:"environmentId" yaml:"environmentId"`
	ExistsInK8s   bool   `json:"existsInK8s" yaml:"existsInK8s"`
}
