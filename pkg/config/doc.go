// Package config loads daemon configuration with viper.
//
// Values are layered: built-in defaults, then a YAML file, then environment
// variables prefixed with CLUSTERSCOPE_ where dots become underscores
// (sync.workers is CLUSTERSCOPE_SYNC_WORKERS). CLI flags are applied on top
// by the caller.
//
//	server:
//	  port: 8080
//	sync:
//	  interval: 5m
//	  workers: 4
//	inventory:
//	  url: https://inventory.example.com/api/v1/clusters
//	store:
//	  driver: sqlite
//	  dsn: /var/lib/clusterscope/state.db
//	versions:
//	  configMapName: sd-versions
//	  dataField: solution-descriptors-summary
//	monitoring:
//	  queries:
//	    cpu: sum(rate(container_cpu_usage_seconds_total{namespace=~"{{ .NamespaceRegex }}"}[5m]))
package config
