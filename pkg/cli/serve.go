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

	"github.com/urfave/cli/v3"

	"github.com/clusterscope/clusterscope/pkg/api"
	"github.com/clusterscope/clusterscope/pkg/config"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reconciliation daemon and its HTTP API",
		Description: `Runs scheduled reconciliation cycles and serves the read API and manual
sync trigger until interrupted.

Flags override the matching configuration keys.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP listen port (server.port)",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "HTTP listen address (server.address)",
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
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Period between scheduled cycles (sync.interval)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Clusters reconciled concurrently (sync.workers)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyServeOverrides(cmd, cfg)
			return api.ServeWithConfig(ctx, cfg)
		},
	}
}

func applyServeOverrides(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("address") {
		cfg.Server.Address = cmd.String("address")
	}
	if cmd.IsSet("inventory-url") {
		cfg.Inventory.URL = cmd.String("inventory-url")
	}
	if cmd.IsSet("inventory-file") {
		cfg.Inventory.File = cmd.String("inventory-file")
	}
	if cmd.IsSet("interval") {
		cfg.Sync.Interval = cmd.Duration("interval")
	}
	if cmd.IsSet("workers") {
		cfg.Sync.Workers = cmd.Int("workers")
	}
}
