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
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"

	"github.com/clusterscope/clusterscope/pkg/defaults"
	"github.com/clusterscope/clusterscope/pkg/k8s/client"
	"github.com/clusterscope/clusterscope/pkg/model"
)

// Call names used in logs and metrics.
const (
	CallListNodes      = "list_nodes"
	CallListNamespaces = "list_namespaces"
	CallListConfigMaps = "list_configmaps"
)

var callDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "clusterscope_controlplane_call_duration_seconds",
		Help:    "Duration of control-plane list calls",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"call", "result"},
)

// ConfigMap is the part of a Kubernetes ConfigMap the reconciler reads.
type ConfigMap struct {
	Name              string
	Data              map[string]string
	CreationTimestamp time.Time
}

// Adapter lists the resources of one cluster's control plane.
type Adapter interface {
	// ListNodes returns the number of nodes in the cluster.
	ListNodes(ctx context.Context) (int, error)

	// ListNamespaces returns every namespace name mapped to its UID.
	ListNamespaces(ctx context.Context) (map[string]string, error)

	// ListConfigMaps returns the config maps called name in namespace.
	ListConfigMaps(ctx context.Context, namespace, name string) ([]ConfigMap, error)
}

// Client implements Adapter over a Kubernetes clientset.
type Client struct {
	clientset   client.Interface
	callTimeout time.Duration
	limiter     *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithCallTimeout bounds every list call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.callTimeout = d
	}
}

// WithLimiter sets a token-bucket limiter that every call waits on.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// New returns a Client for the given clientset.
func New(clientset client.Interface, opts ...Option) *Client {
	c := &Client{
		clientset:   clientset,
		callTimeout: defaults.K8sCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListNodes returns the number of nodes in the cluster.
func (c *Client) ListNodes(ctx context.Context) (int, error) {
	var count int
	err := c.do(ctx, CallListNodes, func(ctx context.Context) error {
		nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return err
		}
		count = len(nodes.Items)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list nodes: %w", err)
	}
	return count, nil
}

// ListNamespaces returns every namespace name mapped to its UID.
func (c *Client) ListNamespaces(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := c.do(ctx, CallListNamespaces, func(ctx context.Context) error {
		list, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
		if err != nil {
			return err
		}
		out = make(map[string]string, len(list.Items))
		for _, ns := range list.Items {
			out[ns.Name] = string(ns.UID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	return out, nil
}

// ListConfigMaps returns the config maps called name in namespace.
func (c *Client) ListConfigMaps(ctx context.Context, namespace, name string) ([]ConfigMap, error) {
	var out []ConfigMap
	err := c.do(ctx, CallListConfigMaps, func(ctx context.Context) error {
		list, err := c.clientset.CoreV1().ConfigMaps(namespace).List(ctx, metav1.ListOptions{
			FieldSelector: fields.OneTermEqualSelector("metadata.name", name).String(),
		})
		if err != nil {
			return err
		}
		for _, cm := range list.Items {
			// not every server honours the field selector
			if cm.Name != name {
				continue
			}
			out = append(out, ConfigMap{
				Name:              cm.Name,
				Data:              cm.Data,
				CreationTimestamp: cm.CreationTimestamp.Time,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list config maps %s/%s: %w", namespace, name, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, call string, fn func(context.Context) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	result := "success"
	if err != nil {
		result = "error"
	}
	callDuration.WithLabelValues(call, result).Observe(time.Since(start).Seconds())
	return err
}

// Connector opens a control-plane session for a declared cluster.
type Connector interface {
	Connect(desc model.ClusterDescriptor) (Adapter, error)
}

// TokenConnector connects with the descriptor's API host and bearer token.
type TokenConnector struct {
	CallTimeout time.Duration
	QPS         float32
	Burst       int
	UserAgent   string

	// newClientset is swapped in tests.
	newClientset func(host, token string, opts client.TokenOptions) (client.Interface, error)
}

// Connect builds a clientset for the cluster. No request is made.
func (t *TokenConnector) Connect(desc model.ClusterDescriptor) (Adapter, error) {
	opts := client.TokenOptions{QPS: t.QPS, Burst: t.Burst, UserAgent: t.UserAgent}

	build := t.newClientset
	if build == nil {
		build = func(host, token string, opts client.TokenOptions) (client.Interface, error) {
			cs, _, err := client.BuildTokenClient(host, token, opts)
			return cs, err
		}
	}

	cs, err := build(desc.APIHost, desc.Token, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session for cluster %s: %w", desc.Name, err)
	}

	var clientOpts []Option
	if t.CallTimeout > 0 {
		clientOpts = append(clientOpts, WithCallTimeout(t.CallTimeout))
	}
	if t.QPS > 0 {
		burst := t.Burst
		if burst <= 0 {
			burst = int(t.QPS)
		}
		clientOpts = append(clientOpts, WithLimiter(rate.NewLimiter(rate.Limit(t.QPS), burst)))
	}
	return New(cs, clientOpts...), nil
}
