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

package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterscope_sync_cycles_total",
			Help: "Reconciliation cycles by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clusterscope_sync_cycle_duration_seconds",
			Help:    "Duration of a full reconciliation cycle",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	clusterTaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterscope_cluster_task_failures_total",
			Help: "Per-cluster tasks that returned an error or panicked",
		},
		[]string{"reason"},
	)

	lastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterscope_last_cycle_timestamp_seconds",
			Help: "Unix time at which the last reconciliation cycle finished",
		},
	)
)
