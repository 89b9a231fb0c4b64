// Package reconciler turns one declared cluster into stored operational
// records.
//
// ClusterReconciler opens a control-plane session, refreshes the Cluster
// record (node count, synced flag, environment ids) and hands the declared
// environments to NamespaceReconciler, which:
//
//   - finds or creates each Environment and Namespace by natural key;
//   - recomputes existsInK8s for every declared namespace;
//   - folds the version marker config map of each existing namespace into the
//     environment's deployment version (newline separated, duplicates
//     suppressed) and keeps the earliest marker creation time as the clean
//     installation date;
//   - replaces the environment's monitoring snapshot, queried with every
//     namespace ever linked to it.
//
// Individual control-plane and monitoring failures degrade the records and
// are counted in clusterscope_degraded_calls_total; store failures abort the
// cluster.
package reconciler
