// Package header provides the common envelope of clusterscope reports.
//
// Reports printed by the CLI embed a Header so that files written by
// different commands identify themselves:
//
//	kind: SyncReport
//	apiVersion: clusterscope.io/v1
//	metadata:
//	  timestamp: "2025-03-01T12:00:00Z"
//	  version: v0.4.0
//
// Create one with New:
//
//	h := header.New(header.KindProbeReport, version, header.WithMetadata("host", host))
package header
