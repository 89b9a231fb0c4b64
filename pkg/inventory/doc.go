// Package inventory provides the declared-inventory snapshot a reconciliation
// cycle works from.
//
// HTTPSource reads a JSON array from an inventory service; FileSource reads a
// YAML or JSON file. Both accept the canonical field names (clusterId,
// clusterName, apiHost, monitoringEndpoint) and the inventory-service
// aliases (id, name, cloudApiHost, monitoringUrl):
//
//	- clusterId: c1
//	  clusterName: alpha
//	  token: <bearer token>
//	  apiHost: https://alpha.example.com:6443
//	  monitoringEndpoint: http://prometheus.alpha.example.com
//	  environments:
//	    - name: env1
//	      namespaces:
//	        - name: ns-a
//	        - name: ns-b
//
// Entries without a name are skipped, and only the first entry for a given
// name is kept.
package inventory
