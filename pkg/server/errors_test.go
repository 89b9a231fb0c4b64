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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	cserrors "github.com/clusterscope/clusterscope/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		name string
		code cserrors.ErrorCode
		want int
	}{
		{"invalid request", cserrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"not found", cserrors.ErrCodeNotFound, http.StatusNotFound},
		{"method not allowed", cserrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"rate limit", cserrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", cserrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"inventory unavailable", cserrors.ErrCodeInventoryUnavailable, http.StatusServiceUnavailable},
		{"timeout", cserrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{"reconcile failed", cserrors.ErrCodeReconcileFailed, http.StatusInternalServerError},
		{"internal", cserrors.ErrCodeInternal, http.StatusInternalServerError},
		{"unknown defaults to internal", cserrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		code cserrors.ErrorCode
		want bool
	}{
		{cserrors.ErrCodeInvalidRequest, false},
		{cserrors.ErrCodeNotFound, false},
		{cserrors.ErrCodeSerialization, false},
		{cserrors.ErrCodeTimeout, true},
		{cserrors.ErrCodeInventoryUnavailable, true},
		{cserrors.ErrCodeReconcileFailed, true},
		{cserrors.ErrorCode("SOMETHING_ELSE"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := retryableFromCode(tt.code); got != tt.want {
				t.Fatalf("retryableFromCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMergeDetails(t *testing.T) {
	if got := mergeDetails(nil, map[string]any{}); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}

	got := mergeDetails(map[string]any{"a": 1, "shared": "old"}, map[string]any{"b": 2, "shared": "new"})
	if len(got) != 3 || got["shared"] != "new" {
		t.Fatalf("unexpected merge result %#v", got)
	}
}

func TestWriteErrorFromErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "structured error keeps its code",
			err:        cserrors.New(cserrors.ErrCodeNotFound, "cluster c9 is not in the inventory"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name: "wrapped structured error is found",
			err: fmt.Errorf("cycle: %w",
				cserrors.Wrap(cserrors.ErrCodeInventoryUnavailable, "inventory fetch failed", errors.New("dial tcp"))),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "INVENTORY_UNAVAILABLE",
		},
		{
			name:       "plain error is internal",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/sync", nil)

			WriteErrorFromErr(rec, req, tt.err, "fallback", nil)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.RequestID == "" {
				t.Fatal("expected request id")
			}
		})
	}
}
