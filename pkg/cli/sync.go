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

	"github.com/urfave/cli/v3"

	"github.com/clusterscope/clusterscope/pkg/api"
	"github.com/clusterscope/clusterscope/pkg/header"
	"github.com/clusterscope/clusterscope/pkg/model"
	"github.com/clusterscope/clusterscope/pkg/orchestrator"
	"github.com/clusterscope/clusterscope/pkg/serializer"
)

// SyncReport is what the sync command prints.
type SyncReport struct {
	header.Header `json:",inline" yaml:",inline"`

	Cycle        *orchestrator.CycleStatus `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	ClusterID    string                    `json:"clusterId,omitempty" yaml:"clusterId,omitempty"`
	Clusters     []*model.Cluster          `json:"clusters" yaml:"clusters"`
	Environments []*model.Environment      `json:"environments" yaml:"environments"`
}

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one reconciliation cycle and print the resulting records",
		Description: `Fetches the declared inventory, reconciles every cluster once against its
control plane and prints the stored clusters and environments.

With --cluster only the cluster with that inventory id or stored record id
is reconciled.

# Examples

  clusterscope sync --inventory-file inventory.yaml --format json
  clusterscope sync --cluster c-0142 --output report.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cluster",
				Usage: "Inventory id or stored record id of a single cluster to reconcile",
			},
			&cli.StringFlag{
				Name:  "inventory-url",
				Usage: "Declared inventory service URL (inventory.url)",
			},
			&cli.StringFlag{
				Name:      "inventory-file",
				Usage:     "Declared inventory YAML or JSON file (inventory.file)",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:  "store-dsn",
				Usage: "Store data source (store.dsn)",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) (err error) {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("inventory-url") {
				cfg.Inventory.URL = cmd.String("inventory-url")
			}
			if cmd.IsSet("inventory-file") {
				cfg.Inventory.File = cmd.String("inventory-file")
			}
			if cmd.IsSet("store-dsn") {
				cfg.Store.DSN = cmd.String("store-dsn")
			}

			d, err := api.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := d.Close(); cerr != nil {
					err = errors.Join(err, cerr)
				}
			}()

			report, err := runSync(ctx, d, cmd.String("cluster"))
			if err != nil {
				return err
			}

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

// runSync reconciles either everything or one cluster and collects the
// stored records afterwards.
func runSync(ctx context.Context, d *api.Daemon, clusterID string) (*SyncReport, error) {
	report := &SyncReport{
		Header:    header.New(header.KindSyncReport, version),
		ClusterID: clusterID,
	}

	if clusterID != "" {
		if err := d.Orchestrator.SyncCluster(ctx, clusterID); err != nil {
			return nil, fmt.Errorf("sync of cluster %s failed: %w", clusterID, err)
		}
	} else {
		if err := d.Orchestrator.RunCycle(ctx); err != nil {
			return nil, err
		}
		if status, ok := d.Orchestrator.LastCycle(); ok {
			report.Cycle = &status
		}
	}

	var err error
	if report.Clusters, err = d.Store.ListClusters(ctx); err != nil {
		return nil, err
	}
	if report.Environments, err = d.Store.ListEnvironments(ctx, ""); err != nil {
		return nil, err
	}
	return report, nil
}
