// Package store persists the operational records produced by reconciliation.
//
// Store is the contract the reconcilers depend on. SQLStore implements it
// with sqlx over either an embedded SQLite database (modernc.org/sqlite, no
// cgo) or PostgreSQL (lib/pq):
//
//	s, err := store.Open(ctx, store.DriverSQLite, "/var/lib/clusterscope/state.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// Schema migrations are embedded and applied on Open; applied versions are
// recorded in the schema_versions table.
//
// Environment-to-namespace links live in their own table with an insertion
// position. Linking is an insert-if-absent, so two writers adding different
// namespaces to the same environment never overwrite each other.
//
// Column values that cannot be decoded (corrupt JSON, bad timestamps) are
// reported as errors with code SERIALIZATION.
package store
