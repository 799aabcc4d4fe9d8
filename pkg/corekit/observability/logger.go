// Package observability provides production-grade observability features
// for corekit caches: structured logging, metrics, and tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds cache context to a logger.
// Returns a new logger with cache_id and policy fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "cache-123", "LRU")
//	enriched.Info("warming up") // includes cache_id, policy
func EnrichLogger(logger *slog.Logger, cacheID, policy string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("cache_id", cacheID),
		slog.String("policy", policy),
	)
}

// LogLoad logs a successful loader invocation for a missed key.
func LogLoad(logger *slog.Logger, key string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("loader completed",
		slog.String("key", key),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogLoadError logs a failed loader invocation.
func LogLoadError(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	logger.Error("loader failed",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogMerge logs a merge of the locked spill layer into the lock-free layer.
func LogMerge(logger *slog.Logger, merged, dropped int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("cache layers merged",
		slog.Int("entries_merged", merged),
		slog.Int("entries_dropped", dropped),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEviction logs a capacity eviction.
func LogEviction(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("entry evicted",
		slog.String("key", key),
	)
}

// LogStoreError logs a backing store failure (non-fatal).
func LogStoreError(logger *slog.Logger, key string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("backing store failed",
		slog.String("key", key),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
