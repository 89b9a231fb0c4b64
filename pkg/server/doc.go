// Package server implements the clusterscope HTTP API: read access to the
// reconciled cluster, environment and namespace records, and the manual
// sync trigger.
//
// # Endpoints
//
//	GET  /v1/clusters
//	GET  /v1/clusters/{id}
//	POST /v1/clusters/{id}/sync     targeted sync by inventory cluster id
//	GET  /v1/environments[?cluster=<id>]
//	GET  /v1/environments/{id}
//	GET  /v1/namespaces[?cluster=<id>]
//	POST /v1/sync                   run one full cycle synchronously
//	GET  /v1/sync/status            summary of the last finished cycle
//	GET  /v1/metadata               monitoring parameter names
//	GET  /health, /ready, /metrics
//
// API endpoints pass through request id, API version negotiation, panic
// recovery, token bucket rate limiting (golang.org/x/time/rate), logging and
// Prometheus request metrics. System endpoints skip the middleware.
//
// Errors are returned as ErrorResponse bodies. Codes come from pkg/errors
// and map onto HTTP statuses with HTTPStatusFromCode; an inventory failure
// during POST /v1/sync yields 503 and an unknown cluster on a targeted sync
// yields 404.
//
// # Usage
//
//	s := server.New(
//	    server.WithConfig(cfg),
//	    server.WithRecords(st),
//	    server.WithSyncer(orch),
//	    server.WithParameters(mon),
//	)
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
package server
