// Package monitoring collects a metric snapshot for an environment.
//
// The Prometheus collaborator renders one PromQL template per configured
// parameter and evaluates it as an instant query against the environment's
// monitoring endpoint. Templates see a QueryVars value:
//
//	cpu: sum(rate(container_cpu_usage_seconds_total{namespace=~"{{ .NamespaceRegex }}"}[5m]))
//	pods: count(kube_pod_info{namespace=~"{{ .NamespaceRegex }}"})
//
// Vector results are summed into one number. A parameter that fails or has
// no samples is left out of the snapshot; the rest are still returned.
package monitoring
