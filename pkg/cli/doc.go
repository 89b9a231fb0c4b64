// Package cli implements the clusterscope command-line interface.
//
// # Commands
//
// serve - Run the daemon:
//
//	clusterscope serve [--port 8080] [--inventory-url URL | --inventory-file FILE]
//
// Runs scheduled reconciliation cycles and serves the HTTP API until
// interrupted. See pkg/api.
//
// sync - Run one cycle:
//
//	clusterscope sync [--cluster ID] [--output FILE] [--format yaml|json]
//
// Reconciles every declared cluster once, or only the one with the given
// inventory or record id, and prints the stored clusters and environments.
//
// probe - Inspect one control plane:
//
//	clusterscope probe --api-host HOST --token TOKEN [--namespace NS ...]
//	clusterscope probe --kubeconfig FILE [--namespace NS ...]
//
// Reports the node count, the namespaces and the deployment-version marker
// of the requested namespaces. Nothing is stored.
//
// version - Print build information.
//
// # Global Flags
//
//	--config, -c   Configuration file (env CLUSTERSCOPE_CONFIG)
//	--log-level    Log level (env LOG_LEVEL)
//
// Configuration keys are read from the file and CLUSTERSCOPE_* environment
// variables by pkg/config; command flags override them.
package cli
