// Package defaults provides centralized timeout and sizing constants.
//
// Keeping every default duration in one place makes the resilience budget of
// a reconciliation cycle visible and easier to tune.
//
// # Categories
//
//   - Sync loop: cycle interval and worker pool size
//   - Kubernetes: per-call deadline and client-side rate limits per cluster
//   - Collaborators: inventory fetch and monitoring query deadlines
//   - Server: HTTP server configuration
//   - HTTP client: outbound request transport settings
//   - Store: SQL connection pool settings
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.K8sCallTimeout)
//	defer cancel()
package defaults
