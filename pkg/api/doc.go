// Package api wires the clusterscope daemon together.
//
// Build turns a loaded configuration into a Daemon: it opens the store,
// creates the control-plane connector, the monitoring collaborator, the
// reconcilers, the worker pool, the sync orchestrator and the HTTP server
// from pkg/server. Run serves the API and runs the scheduler in one
// errgroup, notifying systemd when ready and when stopping.
//
// # Usage
//
//	func main() {
//	    if err := api.Serve(""); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/clusterscope/clusterscope/pkg/api.version=1.0.0'"
package api
