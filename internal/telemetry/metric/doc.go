// Package metric provides Prometheus metrics for the Ecoply client.
//
// This package implements client-side metrics collection:
//
//   - prometheus.go: Registry with session, request and navigation metrics
//   - collector.go: Collector reporting the live authentication state
//
// The CLI is short-lived, so metrics are not served over HTTP; they are
// written in the Prometheus text format to the file named by
// metrics.file when the process exits.
package metric
