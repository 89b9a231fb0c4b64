// Package model defines the operational records kept for each cluster and the
// declared-inventory types they are reconciled against.
//
// Records reference each other by id only: a Namespace carries its cluster
// and environment ids, an Environment its cluster id and linked namespace
// uids, a Cluster its environment ids. None of them owns another; they are
// joined by store lookups.
package model
