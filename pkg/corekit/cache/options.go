package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abalassy/corekit/pkg/corekit/observability"
	"github.com/abalassy/corekit/pkg/corekit/store"
)

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithPolicy sets the eviction policy. Default is LRU.
func WithPolicy[K comparable, V any](p Policy) Option[K, V] {
	return func(c *Cache[K, V]) { c.policy = p }
}

// WithLoader sets the loader invoked by GetOrLoad and RefreshValue.
func WithLoader[K comparable, V any](fn LoaderFunc[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) { c.loader = fn }
}

// WithOnEvict sets a callback fired when entries leave the cache.
func WithOnEvict[K comparable, V any](fn EvictFunc[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = fn }
}

// Loader computes the value for a missing key in a thread-safe accessor.
// It runs outside any accessor lock and may block.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// accessorConfig collects the knobs for NewThreadSafe.
type accessorConfig[K comparable, V any] struct {
	capacity      int
	expiration    time.Duration
	mergeInterval time.Duration
	protect       bool
	backing       store.Store
	codec         Codec[V]
	namespace     string
	keyString     func(K) string
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
}

// AccessorOption configures a ThreadSafeAccessor.
type AccessorOption[K comparable, V any] func(*accessorConfig[K, V])

// WithCapacity bounds the number of resident entries. The bound is
// enforced at merge cadence, not on every store; a zero or negative
// value means unbounded.
func WithCapacity[K comparable, V any](n int) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.capacity = n }
}

// WithExpiration drops entries older than d. Expired entries are
// collected lazily, so Len may briefly count them.
func WithExpiration[K comparable, V any](d time.Duration) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.expiration = d }
}

// WithMergeInterval sets how often the accessor folds recent writes into
// its lock-free read layer.
func WithMergeInterval[K comparable, V any](d time.Duration) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.mergeInterval = d }
}

// WithProtectedLoader guarantees the loader runs at most once per key at
// a time; concurrent requests for the same missing key share one call.
func WithProtectedLoader[K comparable, V any]() AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.protect = true }
}

// WithBackingStore attaches a persistent store. Misses fall through to
// the store before the loader, and loaded or stored values are written
// through. Store failures are logged and never fail the cache operation.
// A nil codec defaults to JSONCodec[V]().
func WithBackingStore[K comparable, V any](s store.Store, codec Codec[V]) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) {
		cfg.backing = s
		cfg.codec = codec
	}
}

// WithNamespace sets the store namespace. Defaults to the accessor ID,
// which makes persisted entries private to one accessor instance.
func WithNamespace[K comparable, V any](ns string) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.namespace = ns }
}

// WithKeyString sets how keys are rendered as store keys.
// Defaults to fmt.Sprintf("%v", key).
func WithKeyString[K comparable, V any](fn func(K) string) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.keyString = fn }
}

// WithLogger sets the structured logger.
func WithLogger[K comparable, V any](l *slog.Logger) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics[K comparable, V any](m observability.MetricsRecorder) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.metrics = m }
}

// WithTracing sets the span manager.
func WithTracing[K comparable, V any](s observability.SpanManager) AccessorOption[K, V] {
	return func(cfg *accessorConfig[K, V]) { cfg.spans = s }
}

func defaultKeyString[K comparable](key K) string {
	return fmt.Sprintf("%v", key)
}
