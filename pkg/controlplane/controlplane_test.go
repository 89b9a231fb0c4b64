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

package controlplane

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/clusterscope/clusterscope/pkg/k8s/client"
	"github.com/clusterscope/clusterscope/pkg/model"
)

func TestClient_ListNodes(t *testing.T) {
	cs := fake.NewClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n2"}},
	)

	count, err := New(cs).ListNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClient_ListNamespaces(t *testing.T) {
	cs := fake.NewClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ns-a", UID: types.UID("uid-a")}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ns-b", UID: types.UID("uid-b")}},
	)

	got, err := New(cs).ListNamespaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ns-a": "uid-a", "ns-b": "uid-b"}, got)
}

func TestClient_ListConfigMaps_FiltersByName(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cs := fake.NewClientset(
		&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: "sd-versions", Namespace: "ns-a", CreationTimestamp: metav1.NewTime(created)},
			Data:       map[string]string{"solution-descriptors-summary": "v1"},
		},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "other", Namespace: "ns-a"}},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "sd-versions", Namespace: "ns-b"}},
	)

	got, err := New(cs).ListConfigMaps(context.Background(), "ns-a", "sd-versions")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sd-versions", got[0].Name)
	assert.Equal(t, "v1", got[0].Data["solution-descriptors-summary"])
	assert.True(t, created.Equal(got[0].CreationTimestamp))

	none, err := New(cs).ListConfigMaps(context.Background(), "ns-c", "sd-versions")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClient_ErrorsAreWrapped(t *testing.T) {
	cs := fake.NewClientset()
	cs.PrependReactor("list", "*", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	c := New(cs)
	ctx := context.Background()

	_, err := c.ListNodes(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list nodes")

	_, err = c.ListNamespaces(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")

	_, err = c.ListConfigMaps(ctx, "ns", "cm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ns/cm")
}

func TestClient_CallTimeout(t *testing.T) {
	cs := fake.NewClientset()
	var deadlineSet bool
	c := New(cs, WithCallTimeout(time.Second))

	err := c.do(context.Background(), CallListNodes, func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, deadlineSet)

	c = New(cs, WithCallTimeout(0))
	err = c.do(context.Background(), CallListNodes, func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.False(t, deadlineSet)
}

func TestClient_LimiterHonoursCancelledContext(t *testing.T) {
	c := New(fake.NewClientset())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := &TokenConnector{QPS: 1, Burst: 1}
	conn.newClientset = func(string, string, client.TokenOptions) (client.Interface, error) {
		return fake.NewClientset(), nil
	}
	adapter, err := conn.Connect(model.ClusterDescriptor{Name: "alpha"})
	require.NoError(t, err)

	// first token is available, second wait fails on the cancelled context
	limited := adapter.(*Client)
	require.NotNil(t, limited.limiter)
	limited.limiter.Allow()
	_, err = limited.ListNodes(ctx)
	assert.Error(t, err)

	_, err = c.ListNodes(context.Background())
	assert.NoError(t, err)
}

func TestTokenConnector_Connect(t *testing.T) {
	var gotHost, gotToken string
	var gotOpts client.TokenOptions
	conn := &TokenConnector{CallTimeout: 5 * time.Second, QPS: 10, Burst: 20, UserAgent: "clusterscope"}
	conn.newClientset = func(host, token string, opts client.TokenOptions) (client.Interface, error) {
		gotHost, gotToken, gotOpts = host, token, opts
		return fake.NewClientset(&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}}), nil
	}

	adapter, err := conn.Connect(model.ClusterDescriptor{Name: "alpha", APIHost: "https://alpha:6443", Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "https://alpha:6443", gotHost)
	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, client.TokenOptions{QPS: 10, Burst: 20, UserAgent: "clusterscope"}, gotOpts)

	count, err := adapter.ListNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 5*time.Second, adapter.(*Client).callTimeout)
}

func TestTokenConnector_ConnectFailure(t *testing.T) {
	conn := &TokenConnector{}

	_, err := conn.Connect(model.ClusterDescriptor{Name: "alpha", APIHost: "", Token: "tok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open session for cluster alpha")
}
