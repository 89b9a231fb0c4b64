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

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/clusterscope/clusterscope/pkg/config"
	"github.com/clusterscope/clusterscope/pkg/controlplane"
	"github.com/clusterscope/clusterscope/pkg/inventory"
	"github.com/clusterscope/clusterscope/pkg/logging"
	"github.com/clusterscope/clusterscope/pkg/monitoring"
	"github.com/clusterscope/clusterscope/pkg/orchestrator"
	"github.com/clusterscope/clusterscope/pkg/reconciler"
	"github.com/clusterscope/clusterscope/pkg/server"
	"github.com/clusterscope/clusterscope/pkg/store"
	"github.com/clusterscope/clusterscope/pkg/workerpool"
)

const (
	name           = "clusterscoped"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/clusterscope/clusterscope/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Daemon is the fully wired reconciliation service.
type Daemon struct {
	Config       *config.Config
	Store        *store.SQLStore
	Pool         *workerpool.Pool
	Monitoring   *monitoring.Prometheus
	Orchestrator *orchestrator.Orchestrator
	Server       *server.Server
}

// Build opens the store and wires every component from cfg. The caller
// owns the result and must Close it.
func Build(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mon, err := monitoring.NewPrometheus(cfg.Monitoring.Queries,
		monitoring.WithTimeout(cfg.Monitoring.Timeout))
	if err != nil {
		return nil, fmt.Errorf("invalid monitoring queries: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}

	connector := &controlplane.TokenConnector{
		CallTimeout: cfg.K8s.CallTimeout,
		QPS:         cfg.K8s.QPS,
		Burst:       cfg.K8s.Burst,
		UserAgent:   fmt.Sprintf("%s/%s", name, version),
	}

	namespaces := reconciler.NewNamespaceReconciler(st, mon, reconciler.VersionMarker{
		ConfigMapName: cfg.Versions.ConfigMapName,
		DataField:     cfg.Versions.DataField,
	})
	clusters := reconciler.NewClusterReconciler(st, connector, namespaces)

	pool := workerpool.New(cfg.Sync.Workers)
	orch := orchestrator.New(NewSource(cfg.Inventory), clusters, pool,
		orchestrator.WithInitialCycle(cfg.Sync.OnStartup),
		orchestrator.WithClusters(st))

	srvCfg := server.NewConfig()
	srvCfg.Name = name
	srvCfg.Version = version
	srvCfg.Address = cfg.Server.Address
	srvCfg.Port = cfg.Server.Port
	srvCfg.RateLimit = rate.Limit(cfg.Server.RateLimit)
	srvCfg.RateLimitBurst = cfg.Server.RateLimitBurst
	if cfg.Server.ShutdownTimeout > 0 {
		srvCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}

	srv := server.New(
		server.WithConfig(srvCfg),
		server.WithRecords(st),
		server.WithSyncer(orch),
		server.WithParameters(mon),
	)

	return &Daemon{
		Config:       cfg,
		Store:        st,
		Pool:         pool,
		Monitoring:   mon,
		Orchestrator: orch,
		Server:       srv,
	}, nil
}

// NewSource picks the declared-inventory source. The URL wins over the file.
func NewSource(cfg config.InventoryConfig) inventory.Source {
	if cfg.URL != "" {
		return inventory.NewHTTPSource(cfg.URL, cfg.Token, cfg.Timeout)
	}
	return inventory.NewFileSource(cfg.File)
}

// Run serves the API and runs the sync scheduler until ctx is done or the
// server fails.
func (d *Daemon) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.Server.Start(gctx)
	})

	g.Go(func() error {
		d.Orchestrator.Run(gctx, d.Config.Sync.Interval)
		return nil
	})

	notify(daemon.SdNotifyReady)
	err := g.Wait()
	notify(daemon.SdNotifyStopping)
	return err
}

// Close stops the worker pool and closes the store.
func (d *Daemon) Close() error {
	d.Pool.Shutdown()
	return d.Store.Close()
}

// Serve loads configuration, runs the daemon and blocks until SIGINT or
// SIGTERM. An empty configPath searches the default locations.
func Serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return ServeWithConfig(ctx, cfg)
}

// ServeWithConfig runs the daemon with an already loaded configuration until
// ctx is done.
func ServeWithConfig(ctx context.Context, cfg *config.Config) (err error) {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, cfg.Log.Level)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	d, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close daemon: %w", cerr))
		}
	}()

	slog.Info("daemon configured",
		"store", cfg.Store.Driver,
		"workers", cfg.Sync.Workers,
		"interval", cfg.Sync.Interval.String(),
		"monitoringParameters", len(d.Monitoring.Parameters()),
	)

	if err := d.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

// notify is a no-op outside systemd.
func notify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		slog.Debug("sd_notify failed", "state", state, "error", err)
	}
}

// Version reports the build metadata.
func Version() (v, c, d string) {
	return version, commit, date
}
