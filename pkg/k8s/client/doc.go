// Package client builds Kubernetes clients.
//
// The reconciliation engine talks to many clusters, each described by an API
// host and a bearer token taken from the declared inventory. BuildTokenClient
// creates a client for one of them:
//
//	clientset, _, err := client.BuildTokenClient("https://alpha:6443", token, client.TokenOptions{QPS: 20, Burst: 40})
//
// BuildKubeClient covers the operator's own kubeconfig, used by the CLI probe
// command. It discovers KUBECONFIG, then ~/.kube/config, then the in-cluster
// service account.
//
// For testing, use k8s.io/client-go/kubernetes/fake; both builders return
// the Interface alias so fakes can stand in.
package client
