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

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/clusterscope/clusterscope/pkg/controlplane"
	"github.com/clusterscope/clusterscope/pkg/defaults"
	"github.com/clusterscope/clusterscope/pkg/header"
	"github.com/clusterscope/clusterscope/pkg/k8s/client"
	"github.com/clusterscope/clusterscope/pkg/reconciler"
	"github.com/clusterscope/clusterscope/pkg/serializer"
)

// ProbeReport is what a single cluster's control plane reports, without
// touching the store.
type ProbeReport struct {
	header.Header `json:",inline" yaml:",inline"`

	Host       string            `json:"host" yaml:"host"`
	Nodes      int               `json:"nodes" yaml:"nodes"`
	Namespaces []string          `json:"namespaces" yaml:"namespaces"`
	Versions   map[string]string `json:"versions,omitempty" yaml:"versions,omitempty"`
}

func probeCmd() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Query one cluster's control plane the way a reconciliation would",
		Description: `Connects with either a bearer token (--api-host, --token) or a kubeconfig,
counts nodes, lists namespaces and reads the deployment-version marker of
each requested namespace. Nothing is stored.

# Examples

  clusterscope probe --kubeconfig ~/.kube/config --namespace team-a-dev
  clusterscope probe --api-host https://10.0.0.1:6443 --token $TOKEN --format json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-host",
				Usage: "API server address for token authentication",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token for --api-host",
				Sources: cli.EnvVars("CLUSTERSCOPE_PROBE_TOKEN"),
			},
			&cli.StringSliceFlag{
				Name:  "namespace",
				Usage: "Namespace whose deployment-version marker is read (repeatable)",
			},
			&cli.StringFlag{
				Name:  "configmap",
				Usage: "Name of the deployment-version config map",
				Value: reconciler.DefaultConfigMapName,
			},
			&cli.StringFlag{
				Name:  "data-field",
				Usage: "Data field holding the deployment version",
				Value: reconciler.DefaultDataField,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout of each control-plane call",
				Value: defaults.K8sCallTimeout,
			},
			kubeconfigFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) (err error) {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			var cs client.Interface
			var host string
			if apiHost := cmd.String("api-host"); apiHost != "" {
				c, rc, err := client.BuildTokenClient(apiHost, cmd.String("token"),
					client.TokenOptions{UserAgent: fmt.Sprintf("%s/%s", name, version)})
				if err != nil {
					return err
				}
				cs, host = c, rc.Host
			} else {
				c, rc, err := client.BuildKubeClient(cmd.String("kubeconfig"))
				if err != nil {
					return err
				}
				cs, host = c, rc.Host
			}

			adapter := controlplane.New(cs, controlplane.WithCallTimeout(cmd.Duration("timeout")))
			report, err := runProbe(ctx, adapter, cmd.StringSlice("namespace"),
				reconciler.VersionMarker{
					ConfigMapName: cmd.String("configmap"),
					DataField:     cmd.String("data-field"),
				})
			if err != nil {
				return err
			}
			report.Host = host

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if cerr := w.Close(); cerr != nil {
					err = errors.Join(err, cerr)
				}
			}()
			return w.Serialize(ctx, report)
		},
	}
}

// runProbe fails on node or namespace listing errors. A namespace whose
// marker cannot be read is logged and left out of Versions.
func runProbe(ctx context.Context, cp controlplane.Adapter, namespaces []string, marker reconciler.VersionMarker) (*ProbeReport, error) {
	nodes, err := cp.ListNodes(ctx)
	if err != nil {
		return nil, err
	}

	observed, err := cp.ListNamespaces(ctx)
	if err != nil {
		return nil, err
	}

	report := &ProbeReport{
		Header:     header.New(header.KindProbeReport, version),
		Nodes:      nodes,
		Namespaces: make([]string, 0, len(observed)),
	}
	for ns := range observed {
		report.Namespaces = append(report.Namespaces, ns)
	}
	sort.Strings(report.Namespaces)

	for _, ns := range namespaces {
		cms, err := cp.ListConfigMaps(ctx, ns, marker.ConfigMapName)
		if err != nil {
			slog.Warn("failed to read deployment-version marker", "namespace", ns, "error", err)
			continue
		}
		if len(cms) == 0 {
			continue
		}
		if report.Versions == nil {
			report.Versions = make(map[string]string)
		}
		report.Versions[ns] = cms[0].Data[marker.DataField]
	}
	return report, nil
}
