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
	"encoding/json"
	"log/slog"
)

// ClusterDescriptor is one cluster of the declared inventory: where to reach
// its control plane and which environments and namespaces should exist on it.
type ClusterDescriptor struct {
	ID                 string                  `json:"clusterId" yaml:"clusterId"`
	Name               string                  `json:"clusterName" yaml:"clusterName"`
	Token              string                  `json:"token" yaml:"token"`
	APIHost            string                  `json:"apiHost" yaml:"apiHost"`
	MonitoringEndpoint string                  `json:"monitoringEndpoint,omitempty" yaml:"monitoringEndpoint,omitempty"`
	Environments       []EnvironmentDescriptor `json:"environments" yaml:"environments"`
}

// EnvironmentDescriptor is a declared environment and its namespaces, in
// declaration order.
type EnvironmentDescriptor struct {
	Name       string                `json:"name" yaml:"name"`
	Namespaces []NamespaceDescriptor `json:"namespaces" yaml:"namespaces"`
}

// NamespaceDescriptor is a declared namespace.
type NamespaceDescriptor struct {
	Name string `json:"name" yaml:"name"`
}

// LogValue keeps the bearer token out of logs.
func (d ClusterDescriptor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", d.ID),
		slog.String("name", d.Name),
		slog.String("apiHost", d.APIHost),
		slog.Int("environments", len(d.Environments)),
	)
}

// UnmarshalJSON accepts both the canonical field names and the names used by
// the inventory service (id, name, cloudApiHost, monitoringUrl).
func (d *ClusterDescriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		ClusterID          string                  `json:"clusterId"`
		ID                 string                  `json:"id"`
		ClusterName        string                  `json:"clusterName"`
		Name               string                  `json:"name"`
		Token              string                  `json:"token"`
		APIHost            string                  `json:"apiHost"`
		CloudAPIHost       string                  `json:"cloudApiHost"`
		MonitoringEndpoint string                  `json:"monitoringEndpoint"`
		MonitoringURL      string                  `json:"monitoringUrl"`
		Environments       []EnvironmentDescriptor `json:"environments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = ClusterDescriptor{
		ID:                 firstNonEmpty(raw.ClusterID, raw.ID),
		Name:               firstNonEmpty(raw.ClusterName, raw.Name),
		Token:              raw.Token,
		APIHost:            firstNonEmpty(raw.APIHost, raw.CloudAPIHost),
		MonitoringEndpoint: firstNonEmpty(raw.MonitoringEndpoint, raw.MonitoringURL),
		Environments:       raw.Environments,
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
