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
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	cserrors "github.com/clusterscope/clusterscope/pkg/errors"
	"github.com/clusterscope/clusterscope/pkg/serializer"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// WriteError writes error response
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code cserrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := requestIDFrom(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps err onto an error response. Structured errors keep
// their code and context; anything else is reported as internal.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extraDetails map[string]any) {
	var se *cserrors.StructuredError
	if !stderrors.As(err, &se) {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusInternalServerError, cserrors.ErrCodeInternal,
			fallbackMessage, true, mergeDetails(map[string]any{"error": err.Error()}, extraDetails))
		return
	}

	status := HTTPStatusFromCode(se.Code)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "code", se.Code, "error", err)
	}

	message := se.Message
	if message == "" {
		message = fallbackMessage
	}

	details := mergeDetails(se.Context, extraDetails)
	if se.Cause != nil {
		details = mergeDetails(details, map[string]any{"error": se.Cause.Error()})
	}

	WriteError(w, r, status, se.Code, message, retryableFromCode(se.Code), details)
}

// HTTPStatusFromCode maps an error code onto an HTTP status.
func HTTPStatusFromCode(code cserrors.ErrorCode) int {
	switch code {
	case cserrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case cserrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cserrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case cserrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case cserrors.ErrCodeUnavailable, cserrors.ErrCodeInventoryUnavailable:
		return http.StatusServiceUnavailable
	case cserrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code cserrors.ErrorCode) bool {
	switch code {
	case cserrors.ErrCodeTimeout,
		cserrors.ErrCodeUnavailable,
		cserrors.ErrCodeInventoryUnavailable,
		cserrors.ErrCodeRateLimitExceeded,
		cserrors.ErrCodeReconcileFailed,
		cserrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
