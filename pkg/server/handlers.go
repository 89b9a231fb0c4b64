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
	"context"
	"fmt"
	"log/slog"
	"net/http"

	cserrors "github.com/clusterscope/clusterscope/pkg/errors"
	"github.com/clusterscope/clusterscope/pkg/model"
	"github.com/clusterscope/clusterscope/pkg/orchestrator"
	"github.com/clusterscope/clusterscope/pkg/serializer"
)

// Records is the read side of the store served by the API.
type Records interface {
	ListClusters(ctx context.Context) ([]*model.Cluster, error)
	FindClusterByID(ctx context.Context, id string) (*model.Cluster, error)
	ListEnvironments(ctx context.Context, clusterID string) ([]*model.Environment, error)
	FindEnvironmentByID(ctx context.Context, id string) (*model.Environment, error)
	ListNamespaces(ctx context.Context, clusterID string) ([]*model.Namespace, error)
}

// Syncer triggers reconciliation and reports on the last cycle.
type Syncer interface {
	RunCycle(ctx context.Context) error
	SyncCluster(ctx context.Context, clusterID string) error
	LastCycle() (orchestrator.CycleStatus, bool)
}

// ParameterSource names the monitoring parameters collected per environment.
type ParameterSource interface {
	Parameters() []string
}

// SyncResponse is returned by a successful targeted sync.
type SyncResponse struct {
	ClusterID string `json:"clusterId"`
	Status    string `json:"status"`
}

// MetadataResponse lists the monitoring parameter names.
type MetadataResponse struct {
	Parameters []string `json:"parameters"`
}

func (s *Server) handleListClusters(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w, r) {
		return
	}
	clusters, err := s.records.ListClusters(r.Context())
	if err != nil {
		WriteErrorFromErr(w, r, err, "Failed to list clusters", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, nonNil(clusters))
}

func (s *Server) handleGetCluster(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w, r) {
		return
	}
	id := r.PathValue("id")
	cluster, err := s.records.FindClusterByID(r.Context(), id)
	if err != nil {
		WriteErrorFromErr(w, r, err, "Failed to load cluster", nil)
		return
	}
	if cluster == nil {
		writeNotFound(w, r, "cluster", id)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, cluster)
}

// handleListEnvironments handles GET /v1/environments with an optional
// cluster query parameter.
func (s *Server) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w, r) {
		return
	}
	envs, err := s.records.ListEnvironments(r.Context(), r.URL.Query().Get("cluster"))
	if err != nil {
		WriteErrorFromErr(w, r, err, "Failed to list environments", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, nonNil(envs))
}

func (s *Server) handleGetEnvironment(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w, r) {
		return
	}
	id := r.PathValue("id")
	env, err := s.records.FindEnvironmentByID(r.Context(), id)
	if err != nil {
		WriteErrorFromErr(w, r, err, "Failed to load environment", nil)
		return
	}
	if env == nil {
		writeNotFound(w, r, "environment", id)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, env)
}

func (s *Server) handleListNamespaces(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w, r) {
		return
	}
	nss, err := s.records.ListNamespaces(r.Context(), r.URL.Query().Get("cluster"))
	if err != nil {
		WriteErrorFromErr(w, r, err, "Failed to list namespaces", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, nonNil(nss))
}

// handleSync runs one full cycle inside the request and returns its summary.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !s.requireSyncer(w, r) {
		return
	}
	err := s.syncer.RunCycle(r.Context())
	syncTriggers.WithLabelValues("all", syncResult(err)).Inc()
	if err != nil {
		WriteErrorFromErr(w, r, err, "Sync cycle failed", nil)
		return
	}
	status, _ := s.syncer.LastCycle()
	serializer.RespondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSyncCluster(w http.ResponseWriter, r *http.Request) {
	if !s.requireSyncer(w, r) {
		return
	}
	id := r.PathValue("id")
	err := s.syncer.SyncCluster(r.Context(), id)
	syncTriggers.WithLabelValues("cluster", syncResult(err)).Inc()
	if err != nil {
		WriteErrorFromErr(w, r, err, "Cluster sync failed", map[string]any{"clusterId": id})
		return
	}
	slog.Debug("targeted sync completed", "clusterId", id)
	serializer.RespondJSON(w, http.StatusOK, SyncResponse{ClusterID: id, Status: "synced"})
}

func syncResult(err error) string {
	if err == nil {
		return "ok"
	}
	if code := cserrors.CodeOf(err); code != "" {
		return string(code)
	}
	return string(cserrors.ErrCodeInternal)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireSyncer(w, r) {
		return
	}
	status, ok := s.syncer.LastCycle()
	if !ok {
		WriteError(w, r, http.StatusNotFound, cserrors.ErrCodeNotFound,
			"No reconciliation cycle has finished yet", true, nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, status)
}

func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	resp := MetadataResponse{Parameters: []string{}}
	if s.parameters != nil {
		resp.Parameters = nonNil(s.parameters.Parameters())
	}
	serializer.RespondJSON(w, http.StatusOK, resp)
}

func (s *Server) requireRecords(w http.ResponseWriter, r *http.Request) bool {
	if s.records == nil {
		WriteError(w, r, http.StatusServiceUnavailable, cserrors.ErrCodeUnavailable,
			"Record store is not configured", false, nil)
		return false
	}
	return true
}

func (s *Server) requireSyncer(w http.ResponseWriter, r *http.Request) bool {
	if s.syncer == nil {
		WriteError(w, r, http.StatusServiceUnavailable, cserrors.ErrCodeUnavailable,
			"Sync is not configured", false, nil)
		return false
	}
	return true
}

func writeNotFound(w http.ResponseWriter, r *http.Request, kind, id string) {
	WriteError(w, r, http.StatusNotFound, cserrors.ErrCodeNotFound,
		fmt.Sprintf("%s %s not found", kind, id), false, map[string]any{"id": id})
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
