package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the canvasgraph tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("canvasgraph")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSyncSpan starts a span for one structural sync (builder run).
	StartSyncSpan(ctx context.Context, projectID, signature string) (context.Context, trace.Span)

	// StartDispatchSpan starts a span for a gesture dispatch.
	StartDispatchSpan(ctx context.Context, op, nodeID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartSyncSpan starts a span for one structural sync.
func (m *otelSpanManager) StartSyncSpan(ctx context.Context, projectID, signature string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "canvasgraph.sync",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("project.signature", signature),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartDispatchSpan starts a span for a gesture dispatch.
func (m *otelSpanManager) StartDispatchSpan(ctx context.Context, op, nodeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "canvasgraph.dispatch."+op,
		trace.WithAttributes(
			attribute.String("gesture.op", op),
			attribute.String("node.id", nodeID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
