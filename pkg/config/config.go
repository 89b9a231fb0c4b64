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

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clusterscope/clusterscope/pkg/defaults"
)

// EnvPrefix prefixes every environment override, e.g. CLUSTERSCOPE_SYNC_WORKERS.
const EnvPrefix = "CLUSTERSCOPE"

// Supported store drivers.
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// Config is the daemon configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Inventory  InventoryConfig  `mapstructure:"inventory"`
	Store      StoreConfig      `mapstructure:"store"`
	K8s        K8sConfig        `mapstructure:"k8s"`
	Versions   VersionsConfig   `mapstructure:"versions"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Port            int           `mapstructure:"port"`
	RateLimit       float64       `mapstructure:"rateLimit"`
	RateLimitBurst  int           `mapstructure:"rateLimitBurst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type SyncConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Workers   int           `mapstructure:"workers"`
	OnStartup bool          `mapstructure:"onStartup"`
}

// InventoryConfig selects the declared-inventory source. URL wins over File.
type InventoryConfig struct {
	URL     string        `mapstructure:"url"`
	File    string        `mapstructure:"file"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type K8sConfig struct {
	CallTimeout time.Duration `mapstructure:"callTimeout"`
	QPS         float32       `mapstructure:"qps"`
	Burst       int           `mapstructure:"burst"`
}

// VersionsConfig locates the deployment-version marker in each namespace.
type VersionsConfig struct {
	ConfigMapName string `mapstructure:"configMapName"`
	DataField     string `mapstructure:"dataField"`
}

// MonitoringConfig maps metric parameter names to PromQL templates.
type MonitoringConfig struct {
	Timeout time.Duration     `mapstructure:"timeout"`
	Queries map[string]string `mapstructure:"queries"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rateLimit", 100)
	v.SetDefault("server.rateLimitBurst", 200)
	v.SetDefault("server.shutdownTimeout", defaults.ServerShutdownTimeout)

	v.SetDefault("sync.interval", defaults.SyncInterval)
	v.SetDefault("sync.workers", defaults.SyncWorkers)
	v.SetDefault("sync.onStartup", true)

	v.SetDefault("inventory.url", "")
	v.SetDefault("inventory.file", "")
	v.SetDefault("inventory.token", "")
	v.SetDefault("inventory.timeout", defaults.InventoryFetchTimeout)

	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.dsn", "clusterscope.db")

	v.SetDefault("k8s.callTimeout", defaults.K8sCallTimeout)
	v.SetDefault("k8s.qps", defaults.K8sQPS)
	v.SetDefault("k8s.burst", defaults.K8sBurst)

	v.SetDefault("versions.configMapName", "sd-versions")
	v.SetDefault("versions.dataField", "solution-descriptors-summary")

	v.SetDefault("monitoring.timeout", defaults.MonitoringQueryTimeout)
	v.SetDefault("monitoring.queries", map[string]string{})

	v.SetDefault("log.level", "info")
}

// Load reads configuration from defaults, then the config file, then
// CLUSTERSCOPE_* environment variables. When path is empty, config.yaml is
// looked up in /etc/clusterscope, $HOME/.clusterscope and the working
// directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/clusterscope/")
		v.AddConfigPath("$HOME/.clusterscope")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Sync.Workers < 1 {
		return fmt.Errorf("sync.workers must be at least 1, got %d", c.Sync.Workers)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive, got %s", c.Sync.Interval)
	}
	if strings.TrimSpace(c.Versions.ConfigMapName) == "" {
		return errors.New("versions.configMapName must not be empty")
	}
	if strings.TrimSpace(c.Versions.DataField) == "" {
		return errors.New("versions.dataField must not be empty")
	}
	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverPostgres:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StoreDriverSQLite, StoreDriverPostgres, c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return errors.New("store.dsn must not be empty")
	}
	if c.Inventory.URL == "" && c.Inventory.File == "" {
		return errors.New("one of inventory.url or inventory.file is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
