// Package logging provides structured logging utilities for clusterscope components.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// so that the daemon, the CLI and the reconciliation engine all emit the same
// JSON shape. It supports environment-based log level configuration,
// module/version context injection, and source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-namespace reconciliation detail, with source location
//   - INFO: cycle and cluster progress (default)
//   - WARN/WARNING: degraded control-plane or monitoring calls
//   - ERROR: failed cluster reconciliations and fatal inventory errors
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("clusterscoped", version)
//	    slog.Info("starting", "workers", cfg.Sync.Workers)
//	}
//
// Reconciliation code logs with the cluster, environment and namespace as
// attributes:
//
//	slog.Warn("failed to list nodes",
//	    "cluster", desc.Name,
//	    "error", err,
//	)
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is passed:
//
//	LOG_LEVEL=debug clusterscope sync
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "cluster reconciled",
//	    "module": "clusterscoped",
//	    "version": "v1.0.0",
//	    "cluster": "alpha"
//	}
package logging
