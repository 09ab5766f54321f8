// Package metrics exports the outcome of a sync run as Prometheus gauges in
// the node_exporter textfile format. Nothing is written unless a textfile
// path is configured.
package metrics
