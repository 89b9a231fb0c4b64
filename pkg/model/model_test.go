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
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_AddNamespaceIsIdempotent(t *testing.T) {
	env := &Environment{}

	assert.True(t, env.AddNamespace("a"))
	assert.True(t, env.AddNamespace("b"))
	assert.False(t, env.AddNamespace("a"))
	assert.Equal(t, []string{"a", "b"}, env.NamespaceIDs)
	assert.True(t, env.HasNamespace("b"))
	assert.False(t, env.HasNamespace("c"))
}

func TestClusterDescriptor_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ClusterDescriptor
	}{
		{
			name: "canonical names",
			in: `{"clusterId":"c1","clusterName":"alpha","token":"t","apiHost":"https://alpha:6443",
				"monitoringEndpoint":"http://prom","environments":[{"name":"env1","namespaces":[{"name":"ns-a"}]}]}`,
			want: ClusterDescriptor{
				ID: "c1", Name: "alpha", Token: "t", APIHost: "https://alpha:6443",
				MonitoringEndpoint: "http://prom",
				Environments: []EnvironmentDescriptor{
					{Name: "env1", Namespaces: []NamespaceDescriptor{{Name: "ns-a"}}},
				},
			},
		},
		{
			name: "inventory service names",
			in:   `{"id":"c2","name":"beta","token":"t","cloudApiHost":"https://beta:6443","monitoringUrl":"http://vm"}`,
			want: ClusterDescriptor{
				ID: "c2", Name: "beta", Token: "t", APIHost: "https://beta:6443",
				MonitoringEndpoint: "http://vm",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ClusterDescriptor
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClusterDescriptor_LogValueOmitsToken(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("descriptor", "cluster", ClusterDescriptor{ID: "c1", Name: "alpha", Token: "secret-token"})

	assert.Contains(t, buf.String(), "alpha")
	assert.NotContains(t, buf.String(), "secret-token")
}
