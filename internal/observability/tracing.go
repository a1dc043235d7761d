package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with span helpers for the pipeline.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName, version string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName, trace.WithInstrumentationVersion(version)),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartDerive starts a span for a differentiation request.
func (t *Tracer) StartDerive(ctx context.Context, expr, variable string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "symdiff.derive", trace.WithAttributes(
		OperationAttr(OpDerive),
		VariableAttr(variable),
		ExprLengthAttr(len(expr)),
	))
}

// StartSimplify starts a span for a simplification request.
func (t *Tracer) StartSimplify(ctx context.Context, expr string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "symdiff.simplify", trace.WithAttributes(
		OperationAttr(OpSimplify),
		ExprLengthAttr(len(expr)),
	))
}

// StartTool starts a span for a tool call.
func (t *Tracer) StartTool(ctx context.Context, tool string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "symdiff.tool", trace.WithAttributes(
		OperationAttr(OpTool),
		attribute.String("symdiff.tool.name", tool),
	))
}

// SetStepCount records the length of the step trace on the span.
func (t *Tracer) SetStepCount(span trace.Span, n int) {
	span.SetAttributes(StepCountAttr(n))
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error, kind string) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(ErrorKindAttr(kind))
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
