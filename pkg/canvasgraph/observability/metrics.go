package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records canvas engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRebuild records one builder run with its output size.
	RecordRebuild(ctx context.Context, nodes, edges int, duration time.Duration)

	// RecordDispatch records a gesture dispatch and its error status.
	RecordDispatch(ctx context.Context, op string, duration time.Duration, err error)

	// RecordCommit records a debounced field commit (content, title).
	RecordCommit(ctx context.Context, field string, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	rebuilds        metric.Int64Counter
	rebuildLatency  metric.Float64Histogram
	visibleNodes    metric.Int64Histogram
	dispatches      metric.Int64Counter
	dispatchErrors  metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	commits         metric.Int64Counter
	commitLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("canvasgraph")

	rebuilds, err := meter.Int64Counter("canvasgraph.canvas.rebuilds",
		metric.WithDescription("Number of builder runs"),
	)
	if err != nil {
		return nil, err
	}

	rebuildLatency, err := meter.Float64Histogram("canvasgraph.canvas.rebuild_latency_ms",
		metric.WithDescription("Builder run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	visibleNodes, err := meter.Int64Histogram("canvasgraph.canvas.visible_nodes",
		metric.WithDescription("Visible node count per builder run"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter("canvasgraph.gesture.dispatches",
		metric.WithDescription("Number of gesture dispatches"),
	)
	if err != nil {
		return nil, err
	}

	dispatchErrors, err := meter.Int64Counter("canvasgraph.gesture.errors",
		metric.WithDescription("Number of failed gesture dispatches"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("canvasgraph.gesture.latency_ms",
		metric.WithDescription("Gesture dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	commits, err := meter.Int64Counter("canvasgraph.card.commits",
		metric.WithDescription("Number of debounced field commits"),
	)
	if err != nil {
		return nil, err
	}

	commitLatency, err := meter.Float64Histogram("canvasgraph.card.commit_latency_ms",
		metric.WithDescription("Debounced field commit latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		rebuilds:        rebuilds,
		rebuildLatency:  rebuildLatency,
		visibleNodes:    visibleNodes,
		dispatches:      dispatches,
		dispatchErrors:  dispatchErrors,
		dispatchLatency: dispatchLatency,
		commits:         commits,
		commitLatency:   commitLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function. Falls back to NoopMetrics if
// instrument creation fails.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("otel metrics unavailable, using noop recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRebuild implements MetricsRecorder.
func (m *otelMetrics) RecordRebuild(ctx context.Context, nodes, edges int, duration time.Duration) {
	m.rebuilds.Add(ctx, 1)
	m.rebuildLatency.Record(ctx, float64(duration.Microseconds())/1000.0)
	m.visibleNodes.Record(ctx, int64(nodes),
		metric.WithAttributes(attribute.Int("edges", edges)))
}

// RecordDispatch implements MetricsRecorder.
func (m *otelMetrics) RecordDispatch(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	if err != nil {
		m.dispatchErrors.Add(ctx, 1, attrs)
	}
}

// RecordCommit implements MetricsRecorder.
func (m *otelMetrics) RecordCommit(ctx context.Context, field string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("field", field))
	m.commits.Add(ctx, 1, attrs)
	m.commitLatency.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
}
