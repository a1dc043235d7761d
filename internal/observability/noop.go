package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer: tracenoop.NewTracerProvider().Tracer(""),
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	m.requestDuration, _ = meter.Float64Histogram(MetricRequestDuration) //nolint:errcheck
	m.requestCount, _ = meter.Int64Counter(MetricRequestCount)           //nolint:errcheck
	m.steps, _ = meter.Int64Histogram(MetricSteps)                       //nolint:errcheck
	m.errorCount, _ = meter.Int64Counter(MetricErrorCount)               //nolint:errcheck

	return m
}
