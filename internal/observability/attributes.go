// Package observability provides OpenTelemetry-based instrumentation for the
// differentiation service.
//
// All features are opt-in. When no providers are configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	TracerName = "github.com/njchilds90/symdiff"
	MeterName  = "github.com/njchilds90/symdiff"
)

// Attribute keys.
const (
	AttrOperation  = "symdiff.operation"
	AttrVariable   = "symdiff.variable"
	AttrExprLength = "symdiff.expr.length"
	AttrStepCount  = "symdiff.step.count"
	AttrErrorKind  = "symdiff.error.kind"
	AttrRoute      = "http.route"
	AttrStatusCode = "http.status_code"
)

// Operation names.
const (
	OpDerive   = "derive"
	OpSimplify = "simplify"
	OpTool     = "tool"
)

// Log field names.
const (
	LogFieldTraceID   = "trace_id"
	LogFieldSpanID    = "span_id"
	LogFieldRequestID = "request_id"
)

func OperationAttr(op string) attribute.KeyValue { return attribute.String(AttrOperation, op) }
func VariableAttr(v string) attribute.KeyValue   { return attribute.String(AttrVariable, v) }
func ExprLengthAttr(n int) attribute.KeyValue    { return attribute.Int(AttrExprLength, n) }
func StepCountAttr(n int) attribute.KeyValue     { return attribute.Int(AttrStepCount, n) }
func ErrorKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}
