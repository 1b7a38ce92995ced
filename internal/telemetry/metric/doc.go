// Package metric provides Prometheus metrics for zpipe.
//
//   - prometheus.go: the registry, message counters and the /metrics server
//   - collector.go: replay progress gauges read from the active log
//
// Metrics are only exposed when --metrics-addr is set; counters are
// always maintained so tests can assert on them.
package metric
