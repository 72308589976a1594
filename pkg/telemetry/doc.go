// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing
// shared by the render runtime, the hydration pass, the page store and the
// HTTP server.
//
// Metrics are registered through promauto on a caller supplied registry so
// tests and embedders can keep them isolated:
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//
// All Metrics methods are safe on a nil receiver, which is how callers
// disable metrics.
package telemetry
