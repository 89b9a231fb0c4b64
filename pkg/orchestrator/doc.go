// Package orchestrator schedules reconciliation cycles.
//
// A cycle fetches the declared inventory exactly once and submits one task
// per cluster to a shared workerpool.Pool, then waits for all of them. A
// failed or panicking cluster task is isolated from its siblings. The only
// error a cycle returns is INVENTORY_UNAVAILABLE, in which case no cluster
// was touched.
//
// Cycles are safe to run concurrently: a manual RunCycle may overlap a
// scheduled one because every store write is an upsert keyed by natural
// identity. Nothing is retried within a cycle; the next cycle is the retry.
package orchestrator
