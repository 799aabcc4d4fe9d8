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

// MetricsRecorder records cache metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordLookup records a cache lookup and whether it hit.
	RecordLookup(ctx context.Context, cacheID string, hit bool)

	// RecordLoad records a loader invocation with its duration and error status.
	RecordLoad(ctx context.Context, cacheID string, duration time.Duration, err error)

	// RecordEviction records capacity evictions.
	RecordEviction(ctx context.Context, cacheID string, count int64)

	// RecordMerge records a merge of the spill layer into the lock-free layer.
	RecordMerge(ctx context.Context, cacheID string, duration time.Duration, entries int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	loadLatency   metric.Float64Histogram
	loadErrors    metric.Int64Counter
	evictions     metric.Int64Counter
	mergeDuration metric.Float64Histogram
	mergeEntries  metric.Int64Histogram
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
	meter := otel.Meter("corekit")

	hits, err := meter.Int64Counter("corekit.cache.hits",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter("corekit.cache.misses",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	loadLatency, err := meter.Float64Histogram("corekit.cache.load.latency_ms",
		metric.WithDescription("Loader invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	loadErrors, err := meter.Int64Counter("corekit.cache.load.errors",
		metric.WithDescription("Number of loader failures"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter("corekit.cache.evictions",
		metric.WithDescription("Number of entries evicted for capacity"),
	)
	if err != nil {
		return nil, err
	}

	mergeDuration, err := meter.Float64Histogram("corekit.cache.merge.duration_ms",
		metric.WithDescription("Spill layer merge duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	mergeEntries, err := meter.Int64Histogram("corekit.cache.merge.entries",
		metric.WithDescription("Entries folded into the lock-free layer per merge"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		hits:          hits,
		misses:        misses,
		loadLatency:   loadLatency,
		loadErrors:    loadErrors,
		evictions:     evictions,
		mergeDuration: mergeDuration,
		mergeEntries:  mergeEntries,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()),
		)
		return NoopMetrics{}
	}
	return m
}

// RecordLookup records a cache lookup.
func (m *otelMetrics) RecordLookup(ctx context.Context, cacheID string, hit bool) {
	attrs := []attribute.KeyValue{
		attribute.String("cache_id", cacheID),
	}
	if hit {
		m.hits.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		m.misses.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordLoad records a loader invocation.
func (m *otelMetrics) RecordLoad(ctx context.Context, cacheID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("cache_id", cacheID),
	}
	m.loadLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
	if err != nil {
		m.loadErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordEviction records capacity evictions.
func (m *otelMetrics) RecordEviction(ctx context.Context, cacheID string, count int64) {
	if count <= 0 {
		return
	}
	m.evictions.Add(ctx, count, metric.WithAttributes(
		attribute.String("cache_id", cacheID),
	))
}

// RecordMerge records a merge.
func (m *otelMetrics) RecordMerge(ctx context.Context, cacheID string, duration time.Duration, entries int64) {
	attrs := []attribute.KeyValue{
		attribute.String("cache_id", cacheID),
	}
	m.mergeDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
	m.mergeEntries.Record(ctx, entries, metric.WithAttributes(attrs...))
}
