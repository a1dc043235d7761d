package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricRequestCount    = "symdiff.request.count"
	MetricRequestDuration = "symdiff.request.duration"
	MetricSteps           = "symdiff.steps"
	MetricErrorCount      = "symdiff.error.count"
)

// Metrics holds the service metric instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	steps           metric.Int64Histogram
	errorCount      metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to a
	// bare instrument so the service keeps partial metrics.
	var err error

	m.requestDuration, err = meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Duration of requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.requestDuration, _ = meter.Float64Histogram(MetricRequestDuration)
	}

	m.requestCount, err = meter.Int64Counter(
		MetricRequestCount,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.requestCount, _ = meter.Int64Counter(MetricRequestCount)
	}

	m.steps, err = meter.Int64Histogram(
		MetricSteps,
		metric.WithDescription("Number of rule applications per derivation"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		m.steps, _ = meter.Int64Histogram(MetricSteps)
	}

	m.errorCount, err = meter.Int64Counter(
		MetricErrorCount,
		metric.WithDescription("Total number of rejected expressions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter(MetricErrorCount)
	}

	return m
}

// RecordRequest records metrics for a completed request.
func (m *Metrics) RecordRequest(ctx context.Context, route string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrRoute, route),
		attribute.Int(AttrStatusCode, statusCode),
	)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.requestCount.Add(ctx, 1, attrs)
}

// RecordSteps records the length of a step trace.
func (m *Metrics) RecordSteps(ctx context.Context, n int) {
	m.steps.Record(ctx, int64(n))
}

// RecordError records a rejected expression by error kind.
func (m *Metrics) RecordError(ctx context.Context, operation, kind string) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(
		OperationAttr(operation),
		ErrorKindAttr(kind),
	))
}
