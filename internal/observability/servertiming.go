package observability

import (
	"context"

	servertiming "github.com/mitchellh/go-server-timing"
)

// Server-Timing metric names, one per pipeline phase.
const (
	TimingLex      = "lex"
	TimingParse    = "parse"
	TimingDerive   = "derive"
	TimingSimplify = "simplify"
	TimingRender   = "render"
)

// ServerTimingMetric wraps the server-timing library's Metric type.
type ServerTimingMetric struct {
	metric *servertiming.Metric
}

// Stop stops the timing metric.
func (m *ServerTimingMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// StartServerTiming starts a server-timing metric with the given name.
// If the context carries no timing header, it returns a no-op metric.
func StartServerTiming(ctx context.Context, name string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}
	return &ServerTimingMetric{
		metric: timing.NewMetric(name).Start(),
	}
}
