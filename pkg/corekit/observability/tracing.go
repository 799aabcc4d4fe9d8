package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the corekit tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("corekit")

// SpanManager handles trace span lifecycle for cache operations.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartLoadSpan starts a span for a loader invocation on a cache miss.
	StartLoadSpan(ctx context.Context, cacheID, key string) (context.Context, trace.Span)

	// StartMergeSpan starts a span for a spill layer merge.
	StartMergeSpan(ctx context.Context, cacheID string) (context.Context, trace.Span)

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

// StartLoadSpan starts a span for a loader invocation.
func (m *otelSpanManager) StartLoadSpan(ctx context.Context, cacheID, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "corekit.cache.load",
		trace.WithAttributes(
			attribute.String("cache.id", cacheID),
			attribute.String("cache.key", key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartMergeSpan starts a span for a spill layer merge.
func (m *otelSpanManager) StartMergeSpan(ctx context.Context, cacheID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "corekit.cache.merge",
		trace.WithAttributes(
			attribute.String("cache.id", cacheID),
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
