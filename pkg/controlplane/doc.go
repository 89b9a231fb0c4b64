// Package controlplane reads cluster state from Kubernetes API servers.
//
// A Connector opens one session per declared cluster using the descriptor's
// API host and bearer token; the resulting Adapter lists nodes, namespaces
// and config maps. Every call runs under a per-call deadline and, when the
// connector has a QPS set, waits on a token-bucket limiter owned by the
// session.
//
// The package only reads. Call durations are exported as
// clusterscope_controlplane_call_duration_seconds{call,result}.
package controlplane
