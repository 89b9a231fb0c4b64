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

// Package k8s groups Kubernetes integration for clusterscope.
//
// # Sub-packages
//
// client: clientset construction for managed clusters
//
//	cs, rc, err := client.BuildTokenClient(apiHost, token, client.TokenOptions{})
//
// Reconciliation builds one clientset per cluster per cycle from the
// inventory's bearer token. The probe command can instead use a kubeconfig:
//
//	cs, rc, err := client.BuildKubeClient(kubeconfig)
//
// Higher level reads used by reconciliation (node count, namespaces,
// config maps) live in pkg/controlplane.
package k8s
