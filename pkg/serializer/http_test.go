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

package serializer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clusterscope/clusterscope/pkg/defaults"
)

type testData struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func TestRespondJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := testData{Message: "success", Code: 200}

	RespondJSON(w, http.StatusCreated, data)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var result testData
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result != data {
		t.Errorf("expected %+v, got %+v", data, result)
	}
}

func TestRespondJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()

	RespondJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestNewHttpReader_Defaults(t *testing.T) {
	r := NewHttpReader()

	if r.UserAgent != HttpReaderUserAgent {
		t.Errorf("expected user agent %s, got %s", HttpReaderUserAgent, r.UserAgent)
	}
	if r.Client == nil {
		t.Fatal("expected client to be set")
	}
	if r.Client.Timeout != defaults.HTTPClientTimeout {
		t.Errorf("expected timeout %v, got %v", defaults.HTTPClientTimeout, r.Client.Timeout)
	}
}

func TestNewHttpReader_WithCustomClient(t *testing.T) {
	custom := &http.Client{}
	r := NewHttpReader(WithClient(custom), WithTotalTimeout(3*time.Second))

	if r.Client != custom {
		t.Fatal("expected custom client to be used")
	}
	if custom.Timeout != 3*time.Second {
		t.Errorf("expected timeout to be applied to custom client, got %v", custom.Timeout)
	}
}

func TestHttpReader_ReadWithContext(t *testing.T) {
	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[{"clusterId":"c1"}]`))
	}))
	defer srv.Close()

	r := NewHttpReader(WithBearerToken("secret"), WithUserAgent("test-agent"))
	data, err := r.ReadWithContext(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `[{"clusterId":"c1"}]` {
		t.Errorf("unexpected body %q", data)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotUA != "test-agent" {
		t.Errorf("expected user agent test-agent, got %q", gotUA)
	}
}

func TestHttpReader_ReadWithContext_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewHttpReader()

	if _, err := r.ReadWithContext(context.Background(), ""); err == nil {
		t.Error("expected error for empty url")
	}
	if _, err := r.ReadWithContext(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-200 status")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.ReadWithContext(ctx, srv.URL); err == nil {
		t.Error("expected error for canceled context")
	}
}
