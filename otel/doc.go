// Package otel provides an OpenTelemetry-backed growtable.MetricsCollector.
//
// It is a separate module so growtable's core package carries no OTEL
// dependency: callers who want observability import this package and its
// own go.mod pulls in go.opentelemetry.io/otel.
package otel
