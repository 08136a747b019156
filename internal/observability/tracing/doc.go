// Package tracing exposes the OpenTelemetry tracer of the sync worker.
//
// Without a registered TracerProvider the spans are no-ops, so the worker runs
// unchanged when no exporter is configured.
package tracing
