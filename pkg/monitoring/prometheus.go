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

package monitoring

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"golang.org/x/sync/errgroup"

	"github.com/clusterscope/clusterscope/pkg/defaults"
)

// maxParallelQueries bounds the per-environment query fan-out.
const maxParallelQueries = 4

// Collaborator returns a monitoring snapshot for one environment.
type Collaborator interface {
	// Query returns metric parameter name mapped to its current value.
	// An empty endpoint yields an empty map.
	Query(ctx context.Context, endpoint, environment, cluster string, namespaces []string) (map[string]string, error)

	// Parameters lists the metric parameter names Query can return.
	Parameters() []string
}

// QueryVars is the data a query template is rendered with.
type QueryVars struct {
	Environment string
	Cluster     string
	Namespaces  []string

	// NamespaceRegex is Namespaces joined with "|", ready for a
	// namespace=~"..." matcher. Namespace names are DNS labels and carry no
	// regex metacharacters.
	NamespaceRegex string
}

// Prometheus implements Collaborator against the Prometheus HTTP API.
// One PromQL template is configured per metric parameter.
type Prometheus struct {
	templates map[string]*template.Template
	names     []string
	timeout   time.Duration
	transport http.RoundTripper

	mu      sync.Mutex
	clients map[string]promv1.API
}

var _ Collaborator = (*Prometheus)(nil)

// Option configures a Prometheus collaborator.
type Option func(*Prometheus)

// WithTimeout bounds each query.
func WithTimeout(d time.Duration) Option {
	return func(p *Prometheus) {
		p.timeout = d
	}
}

// WithRoundTripper sets the HTTP transport used for queries.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(p *Prometheus) {
		p.transport = rt
	}
}

// NewPrometheus parses one query template per parameter.
func NewPrometheus(queries map[string]string, opts ...Option) (*Prometheus, error) {
	p := &Prometheus{
		templates: make(map[string]*template.Template, len(queries)),
		timeout:   defaults.MonitoringQueryTimeout,
		transport: api.DefaultRoundTripper,
		clients:   make(map[string]promv1.API),
	}
	for name, text := range queries {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse query for parameter %s: %w", name, err)
		}
		p.templates[name] = tmpl
		p.names = append(p.names, name)
	}
	sort.Strings(p.names)

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parameters returns the configured parameter names in sorted order.
func (p *Prometheus) Parameters() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Query runs every configured query against the endpoint. A parameter whose
// query fails or returns no samples is logged and left out of the result.
func (p *Prometheus) Query(ctx context.Context, endpoint, environment, cluster string, namespaces []string) (map[string]string, error) {
	result := make(map[string]string)
	if endpoint == "" || len(p.names) == 0 {
		return result, nil
	}

	client, err := p.client(endpoint)
	if err != nil {
		return nil, err
	}

	vars := QueryVars{
		Environment:    environment,
		Cluster:        cluster,
		Namespaces:     namespaces,
		NamespaceRegex: namespaceRegex(namespaces),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxParallelQueries)

	for _, name := range p.names {
		g.Go(func() error {
			value, err := p.queryOne(ctx, client, name, vars)
			if err != nil {
				slog.Warn("monitoring query failed",
					"parameter", name,
					"environment", environment,
					"cluster", cluster,
					"error", err)
				return nil
			}
			if value == "" {
				slog.Debug("monitoring query returned no samples",
					"parameter", name,
					"environment", environment,
					"cluster", cluster)
				return nil
			}
			mu.Lock()
			result[name] = value
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

func (p *Prometheus) queryOne(ctx context.Context, client promv1.API, name string, vars QueryVars) (string, error) {
	var buf bytes.Buffer
	if err := p.templates[name].Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render query: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	value, warnings, err := client.Query(ctx, buf.String(), time.Now())
	if err != nil {
		return "", err
	}
	for _, w := range warnings {
		slog.Debug("monitoring query warning", "parameter", name, "warning", w)
	}
	return formatValue(value)
}

func (p *Prometheus) client(endpoint string) (promv1.API, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[endpoint]; ok {
		return c, nil
	}
	c, err := api.NewClient(api.Config{Address: endpoint, RoundTripper: p.transport})
	if err != nil {
		return nil, fmt.Errorf("failed to create monitoring client for %s: %w", endpoint, err)
	}
	v1 := promv1.NewAPI(c)
	p.clients[endpoint] = v1
	return v1, nil
}

// formatValue reduces a query result to a single string. Vectors are summed;
// an empty vector yields "".
func formatValue(v model.Value) (string, error) {
	switch val := v.(type) {
	case model.Vector:
		if len(val) == 0 {
			return "", nil
		}
		var sum float64
		for _, s := range val {
			sum += float64(s.Value)
		}
		return formatFloat(sum), nil
	case *model.Scalar:
		return formatFloat(float64(val.Value)), nil
	case *model.String:
		return val.Value, nil
	default:
		return "", fmt.Errorf("unsupported result type %s", v.Type())
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func namespaceRegex(namespaces []string) string {
	return strings.Join(namespaces, "|")
}
