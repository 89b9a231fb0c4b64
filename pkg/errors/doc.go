// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// The codes mirror the reconciliation failure taxonomy: an unreachable
// inventory source aborts a cycle, a failed cluster is isolated, and a store
// encode/decode failure is a hard failure for that single read or write.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeSerialization,
//	    "failed to decode environment",
//	    err,
//	    map[string]any{
//	        "column": "monitoring_data",
//	        "id":     env.ID,
//	    },
//	)
package errors
