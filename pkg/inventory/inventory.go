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

package inventory

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clusterscope/clusterscope/pkg/defaults"
	"github.com/clusterscope/clusterscope/pkg/model"
	"github.com/clusterscope/clusterscope/pkg/serializer"
)

// Source returns the declared inventory snapshot.
type Source interface {
	Fetch(ctx context.Context) ([]model.ClusterDescriptor, error)
}

// HTTPSource fetches the inventory as a JSON array from an inventory service.
type HTTPSource struct {
	url     string
	timeout time.Duration
	reader  *serializer.HttpReader
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource returns a source reading url. A non-empty token is sent as a
// bearer token; a zero timeout uses the default.
func NewHTTPSource(url, token string, timeout time.Duration, opts ...serializer.HttpReaderOption) *HTTPSource {
	if timeout <= 0 {
		timeout = defaults.InventoryFetchTimeout
	}
	opts = append([]serializer.HttpReaderOption{
		serializer.WithBearerToken(token),
		serializer.WithTotalTimeout(timeout),
	}, opts...)
	return &HTTPSource{
		url:     url,
		timeout: timeout,
		reader:  serializer.NewHttpReader(opts...),
	}
}

// Fetch downloads and decodes the inventory.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.ClusterDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.reader.ReadWithContext(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	r, err := serializer.NewReader(serializer.FormatJSON, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var out []model.ClusterDescriptor
	if err := r.Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to decode inventory from %s: %w", s.url, err)
	}
	return normalize(out), nil
}

// FileSource reads the inventory from a local YAML or JSON file on every fetch.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]model.ClusterDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := serializer.FromFile[[]model.ClusterDescriptor](s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return normalize(*out), nil
}

// normalize drops descriptors without a name, keeps the first of duplicated
// names and defaults a missing id to the name.
func normalize(in []model.ClusterDescriptor) []model.ClusterDescriptor {
	out := make([]model.ClusterDescriptor, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, d := range in {
		if d.Name == "" {
			slog.Warn("skipping inventory entry without cluster name", "cluster", d)
			continue
		}
		if _, dup := seen[d.Name]; dup {
			slog.Warn("skipping duplicate inventory entry", "cluster", d)
			continue
		}
		seen[d.Name] = struct{}{}
		if d.ID == "" {
			d.ID = d.Name
		}
		out = append(out, d)
	}
	return out
}
