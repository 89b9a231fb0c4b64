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

package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// callMonitoring labels degraded monitoring queries; control-plane calls use
// the controlplane.Call* names.
const callMonitoring = "monitoring"

var (
	degradedCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterscope_degraded_calls_total",
			Help: "Control-plane and monitoring calls that failed and were substituted with a default",
		},
		[]string{"call"},
	)

	clusterReconciles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterscope_cluster_reconciles_total",
			Help: "Cluster reconciliations by result",
		},
		[]string{"result"},
	)

	clusterReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clusterscope_cluster_reconcile_duration_seconds",
			Help:    "Duration of a single cluster reconciliation",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)
