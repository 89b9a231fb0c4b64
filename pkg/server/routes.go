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

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/clusterscope/clusterscope/pkg/serializer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

// apiRoutes lists the middleware-wrapped API endpoints.
func (s *Server) apiRoutes() []route {
	return []route{
		{"GET /v1/clusters", s.handleListClusters},
		{"GET /v1/clusters/{id}", s.handleGetCluster},
		{"POST /v1/clusters/{id}/sync", s.handleSyncCluster},
		{"GET /v1/environments", s.handleListEnvironments},
		{"GET /v1/environments/{id}", s.handleGetEnvironment},
		{"GET /v1/namespaces", s.handleListNamespaces},
		{"POST /v1/sync", s.handleSync},
		{"GET /v1/sync/status", s.handleSyncStatus},
		{"GET /v1/metadata", s.handleMetadata},
	}
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleDefault)

	// System endpoints (no rate limiting)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	for _, rt := range s.apiRoutes() {
		mux.HandleFunc(rt.pattern, s.withMiddleware(rt.handler))
	}

	return mux
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	routes := []string{"GET /health", "GET /ready", "GET /metrics"}
	for _, rt := range s.apiRoutes() {
		routes = append(routes, rt.pattern)
	}

	resp := struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Ready     bool     `json:"ready"`
		Timestamp string   `json:"timestamp"`
		Routes    []string `json:"routes"`
	}{
		Name:      s.config.Name,
		Version:   s.config.Version,
		Ready:     s.isReady(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    routes,
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
