package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Config is what the HTTP layer reports to. A Config from NewConfig is ready
// to use; without providers it traces and measures into no-ops.
type Config struct {
	ServiceName    string
	ServiceVersion string
	ServerTiming   bool

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         *Tracer
	metrics        *Metrics
}

type Option func(*Config)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) { c.tracerProvider = tp }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) { c.meterProvider = mp }
}

func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

func WithServiceVersion(version string) Option {
	return func(c *Config) { c.ServiceVersion = version }
}

// WithServerTiming adds a Server-Timing header with one entry per pipeline
// phase.
func WithServerTiming() Option {
	return func(c *Config) { c.ServerTiming = true }
}

// NewConfig applies opts and builds the tracer and metrics.
func NewConfig(opts ...Option) *Config {
	c := &Config{ServiceName: "symdiff"}
	for _, opt := range opts {
		opt(c)
	}

	c.tracer = NewNoopTracer()
	if c.tracerProvider != nil {
		c.tracer = NewTracer(c.tracerProvider, c.ServiceName, c.ServiceVersion)
	}
	c.metrics = NewNoopMetrics()
	if c.meterProvider != nil {
		c.metrics = NewMetrics(c.meterProvider)
	}
	return c
}

// Tracer returns the configured tracer; a nil Config traces into a no-op.
func (c *Config) Tracer() *Tracer {
	if c == nil || c.tracer == nil {
		return NewNoopTracer()
	}
	return c.tracer
}

func (c *Config) Metrics() *Metrics {
	if c == nil || c.metrics == nil {
		return NewNoopMetrics()
	}
	return c.metrics
}

func (c *Config) ServerTimingEnabled() bool {
	return c != nil && c.ServerTiming
}
