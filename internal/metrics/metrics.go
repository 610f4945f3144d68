// Package metrics provides Prometheus collectors for the terminal services.
//
// HTTP traffic is recorded by HTTPMiddleware, transfer flows by the observer
// returned from TransferMetrics.Observer and the activity watcher by
// ActivityMetrics. StartMetricsServer exposes everything on /metrics.
package metrics
