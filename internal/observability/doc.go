// Package observability groups the logging, metrics, and tracing helpers of the
// sanctions sync worker.
//
// Subpackages:
//   - logging: slog logger construction and context propagation
//   - metrics: Prometheus collectors for downloads, parsing, and table loads
//   - tracing: OpenTelemetry tracer used to span each sync stage
package observability
