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

package client

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/clusterscope/clusterscope/pkg/defaults"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in tests.
// This enables using fake.NewClientset() which returns kubernetes.Interface.
type Interface = kubernetes.Interface

// TokenOptions tunes a client built from a bearer token.
type TokenOptions struct {
	// QPS and Burst bound the client-side request rate. Zero uses the defaults.
	QPS   float32
	Burst int

	// UserAgent is appended to every request when set.
	UserAgent string
}

// TokenConfig returns a rest.Config for the API server at host that
// authenticates with the given bearer token.
//
// Certificate verification is disabled: inventory descriptors carry only a
// host and a token, never a CA bundle.
func TokenConfig(host, token string, opts TokenOptions) (*rest.Config, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("api host is empty")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("invalid api host %q: %w", host, err)
	}
	if token == "" {
		return nil, fmt.Errorf("bearer token for %s is empty", host)
	}

	qps, burst := opts.QPS, opts.Burst
	if qps <= 0 {
		qps = defaults.K8sQPS
	}
	if burst <= 0 {
		burst = defaults.K8sBurst
	}

	return &rest.Config{
		Host:            host,
		BearerToken:     token,
		TLSClientConfig: rest.TLSClientConfig{Insecure: true},
		QPS:             qps,
		Burst:           burst,
		Timeout:         defaults.K8sCallTimeout,
		UserAgent:       opts.UserAgent,
	}, nil
}

// BuildTokenClient creates a Kubernetes client for one remote cluster from
// its API host and bearer token.
//
// Example:
//
//	clientset, _, err := client.BuildTokenClient(desc.APIHost, desc.Token, client.TokenOptions{})
//	if err != nil {
//	    return fmt.Errorf("failed to build client for %s: %w", desc.Name, err)
//	}
func BuildTokenClient(host, token string, opts TokenOptions) (Interface, *rest.Config, error) {
	config, err := TokenConfig(host, token, opts)
	if err != nil {
		return nil, nil, err
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client for %s: %w", config.Host, err)
	}
	return client, config, nil
}

// BuildKubeClient creates a Kubernetes client from the given kubeconfig file.
//
// If kubeconfig is empty it is discovered in this order:
//  1. KUBECONFIG environment variable
//  2. ~/.kube/config (if it exists)
//  3. In-cluster configuration (service account)
func BuildKubeClient(kubeconfig string) (Interface, *rest.Config, error) {
	var config *rest.Config
	var err error

	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")

		if kubeconfig == "" {
			kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
			if _, err = os.Stat(kubeconfig); os.IsNotExist(err) {
				kubeconfig = ""
			}
		}
	}

	// Use InClusterConfig directly when no kubeconfig is available
	// This avoids the warning: "Neither --kubeconfig nor --master was specified"
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}
