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

package defaults

import "time"

// Sync loop defaults.
const (
	// SyncInterval is the default period between scheduled reconciliation cycles.
	SyncInterval = 5 * time.Minute

	// SyncWorkers is the default size of the per-cluster worker pool.
	SyncWorkers = 4
)

// Kubernetes timeouts for control-plane calls.
const (
	// K8sCallTimeout bounds a single list call against a cluster API server.
	// A stalled cluster releases its worker slot once it expires.
	K8sCallTimeout = 30 * time.Second

	// K8sQPS is the default client-side request rate per cluster session.
	K8sQPS = 20

	// K8sBurst is the default client-side burst per cluster session.
	K8sBurst = 40
)

// Collaborator timeouts for outbound calls.
const (
	// InventoryFetchTimeout bounds the declared-inventory fetch.
	InventoryFetchTimeout = 60 * time.Second

	// MonitoringQueryTimeout bounds one monitoring query per environment.
	MonitoringQueryTimeout = 15 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	// Manual sync runs a full cycle inside the request, hence the long value.
	ServerWriteTimeout = 10 * time.Minute

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Store defaults.
const (
	// StoreConnMaxLifetime recycles pooled SQL connections.
	StoreConnMaxLifetime = 5 * time.Minute

	// StoreMaxOpenConns caps pooled connections for network databases.
	StoreMaxOpenConns = 25

	// StoreMaxIdleConns caps idle pooled connections for network databases.
	StoreMaxIdleConns = 5
)
