package cache

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abalassy/corekit/pkg/corekit/observability"
	"github.com/abalassy/corekit/pkg/corekit/store"
	"github.com/abalassy/corekit/pkg/corekit/syncmap"
)

// tsEntry is what the accessor keeps per key: the value, when it was
// loaded, and a monotonic sequence used as insertion order for trimming.
type tsEntry[V any] struct {
	value V
	at    time.Time
	seq   int64
}

// agedKey pairs a key with its insertion sequence for capacity trims.
type agedKey[K comparable] struct {
	key K
	seq int64
}

// call tracks one in-flight loader invocation shared by concurrent
// misses for the same key.
type call[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// ThreadSafeAccessor is a concurrent read-mostly cache around a loader.
//
// Hits are served lock-free from a two-layer dictionary; misses invoke
// the loader and store the result. With WithProtectedLoader concurrent
// misses for one key share a single loader call. An optional backing
// store adds read-through / write-through persistence, and expiration
// turns stale entries back into misses.
//
// All methods are safe for concurrent use.
type ThreadSafeAccessor[K comparable, V any] struct {
	id     string
	loader Loader[K, V]
	dict   *syncmap.Dictionary[K, tsEntry[V]]

	capacity   int
	expiration time.Duration
	trimEvery  time.Duration

	protect bool
	flight  map[K]*call[V]
	flMu    sync.Mutex

	backing   store.Store
	codec     Codec[V]
	namespace string
	keyString func(K) string

	seq      atomic.Int64
	lastTrim atomic.Int64 // unix nanos

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	stats atomicStats
}

// NewThreadSafe wraps loader into a concurrent cache.
// Returns ErrNilLoader if loader is nil.
func NewThreadSafe[K comparable, V any](loader Loader[K, V], opts ...AccessorOption[K, V]) (*ThreadSafeAccessor[K, V], error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	cfg := accessorConfig[K, V]{
		mergeInterval: 100 * time.Millisecond,
		keyString:     defaultKeyString[K],
		logger:        slog.Default(),
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.backing != nil && cfg.codec == nil {
		cfg.codec = JSONCodec[V]()
	}
	a := &ThreadSafeAccessor[K, V]{
		id:     uuid.NewString(),
		loader: loader,
		dict: syncmap.NewDictionary[K, tsEntry[V]](
			syncmap.WithMergeInterval(cfg.mergeInterval),
		),
		capacity:   cfg.capacity,
		expiration: cfg.expiration,
		trimEvery:  cfg.mergeInterval,
		protect:    cfg.protect,
		backing:    cfg.backing,
		codec:      cfg.codec,
		namespace:  cfg.namespace,
		keyString:  cfg.keyString,
		metrics:    cfg.metrics,
		spans:      cfg.spans,
	}
	if a.protect {
		a.flight = make(map[K]*call[V])
	}
	if a.namespace == "" {
		a.namespace = a.id
	}
	a.logger = observability.EnrichLogger(cfg.logger, a.id, "accessor")
	return a, nil
}

// ID returns the accessor's unique identifier. It doubles as the default
// store namespace.
func (a *ThreadSafeAccessor[K, V]) ID() string { return a.id }

// Get returns the value for key, loading it on a miss.
func (a *ThreadSafeAccessor[K, V]) Get(ctx context.Context, key K) (V, error) {
	if e, ok := a.dict.Load(key); ok && !a.expired(e) {
		a.stats.hits.Add(1)
		a.metrics.RecordLookup(ctx, a.id, true)
		return e.value, nil
	}
	a.stats.misses.Add(1)
	a.metrics.RecordLookup(ctx, a.id, false)

	if a.protect {
		return a.loadShared(ctx, key)
	}
	return a.loadAndStore(ctx, key)
}

// Peek returns the resident value for key without loading.
func (a *ThreadSafeAccessor[K, V]) Peek(key K) (V, bool) {
	e, ok := a.dict.Load(key)
	if !ok || a.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for key directly, bypassing the loader.
func (a *ThreadSafeAccessor[K, V]) Set(ctx context.Context, key K, value V) {
	a.stats.writes.Add(1)
	a.place(key, value)
	a.writeThrough(ctx, key, value)
	a.maybeTrim(ctx)
}

// Remove deletes key from the cache and the backing store.
func (a *ThreadSafeAccessor[K, V]) Remove(ctx context.Context, key K) {
	a.dict.Delete(key)
	a.stats.deletes.Add(1)
	if a.backing != nil {
		if err := a.backing.Delete(a.namespace, a.keyString(key)); err != nil {
			observability.LogStoreError(a.logger, a.keyString(key), "delete", err)
		}
	}
}

// Clear drops every entry. The backing store's namespace is purged too.
func (a *ThreadSafeAccessor[K, V]) Clear(ctx context.Context) {
	a.dict.Clear()
	if a.backing != nil {
		if err := a.backing.DeleteNamespace(a.namespace); err != nil {
			observability.LogStoreError(a.logger, "", "delete_namespace", err)
		}
	}
}

// Merge folds recent writes into the lock-free read layer immediately
// instead of waiting for the merge cadence.
func (a *ThreadSafeAccessor[K, V]) Merge(ctx context.Context) {
	ctx, span := a.spans.StartMergeSpan(ctx, a.id)
	elapsed := observability.TimedOperation()
	merged := a.dict.Len()
	a.dict.Merge()
	ms := elapsed()
	a.metrics.RecordMerge(ctx, a.id, time.Duration(ms*float64(time.Millisecond)), int64(merged))
	observability.LogMerge(a.logger, merged, 0, ms)
	a.spans.EndSpanWithError(span, nil)
}

// Len returns the number of resident entries. Expired entries that have
// not been touched since expiring are still counted.
func (a *ThreadSafeAccessor[K, V]) Len() int { return a.dict.Len() }

// Stats returns a snapshot of the activity counters.
func (a *ThreadSafeAccessor[K, V]) Stats() Stats { return a.stats.snapshot() }

// ResetStats zeroes the activity counters.
func (a *ThreadSafeAccessor[K, V]) ResetStats() { a.stats.reset() }

func (a *ThreadSafeAccessor[K, V]) expired(e tsEntry[V]) bool {
	return a.expiration > 0 && time.Since(e.at) > a.expiration
}

func (a *ThreadSafeAccessor[K, V]) place(key K, value V) {
	a.placeAt(key, value, time.Now())
}

func (a *ThreadSafeAccessor[K, V]) placeAt(key K, value V, at time.Time) {
	a.dict.Store(key, tsEntry[V]{
		value: value,
		at:    at,
		seq:   a.seq.Add(1),
	})
}

// loadShared funnels concurrent misses for one key through a single
// loader call; every waiter gets the same value and error.
func (a *ThreadSafeAccessor[K, V]) loadShared(ctx context.Context, key K) (V, error) {
	a.flMu.Lock()
	if c, ok := a.flight[key]; ok {
		a.flMu.Unlock()
		c.wg.Wait()
		return c.val, c.err
	}
	c := new(call[V])
	c.wg.Add(1)
	a.flight[key] = c
	a.flMu.Unlock()

	c.val, c.err = a.loadAndStore(ctx, key)

	a.flMu.Lock()
	delete(a.flight, key)
	a.flMu.Unlock()
	c.wg.Done()
	return c.val, c.err
}

// loadAndStore resolves a miss: backing store first, then the loader.
func (a *ThreadSafeAccessor[K, V]) loadAndStore(ctx context.Context, key K) (V, error) {
	if v, savedAt, ok := a.readThrough(key); ok {
		// Keep the store's save time so the entry's remaining
		// lifetime survives the process boundary.
		a.placeAt(key, v, savedAt)
		a.maybeTrim(ctx)
		return v, nil
	}

	ctx, span := a.spans.StartLoadSpan(ctx, a.id, a.keyString(key))
	elapsed := observability.TimedOperation()
	v, err := a.loader(ctx, key)
	ms := elapsed()
	a.metrics.RecordLoad(ctx, a.id, time.Duration(ms*float64(time.Millisecond)), err)
	a.spans.EndSpanWithError(span, err)
	if err != nil {
		a.stats.loadErrors.Add(1)
		observability.LogLoadError(a.logger, a.keyString(key), err)
		var zero V
		return zero, &LoadError{Key: key, Err: err}
	}
	a.stats.loads.Add(1)
	observability.LogLoad(a.logger, a.keyString(key), ms)

	a.stats.writes.Add(1)
	a.place(key, v)
	a.writeThrough(ctx, key, v)
	a.maybeTrim(ctx)
	return v, nil
}

func (a *ThreadSafeAccessor[K, V]) readThrough(key K) (V, time.Time, bool) {
	var zero V
	if a.backing == nil {
		return zero, time.Time{}, false
	}
	data, savedAt, err := a.backing.LoadEntry(a.namespace, a.keyString(key))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			observability.LogStoreError(a.logger, a.keyString(key), "load", err)
		}
		return zero, time.Time{}, false
	}
	if a.expiration > 0 && time.Since(savedAt) > a.expiration {
		// A persisted entry past its lifetime is a miss; the loader
		// result will overwrite it on the write-through.
		return zero, time.Time{}, false
	}
	v, err := a.codec.Decode(data)
	if err != nil {
		observability.LogStoreError(a.logger, a.keyString(key), "decode", &CodecError{Key: key, Op: "decode", Err: err})
		return zero, time.Time{}, false
	}
	return v, savedAt, true
}

func (a *ThreadSafeAccessor[K, V]) writeThrough(ctx context.Context, key K, value V) {
	if a.backing == nil {
		return
	}
	data, err := a.codec.Encode(value)
	if err != nil {
		observability.LogStoreError(a.logger, a.keyString(key), "encode", &CodecError{Key: key, Op: "encode", Err: err})
		return
	}
	if err := a.backing.Save(a.namespace, a.keyString(key), data); err != nil {
		observability.LogStoreError(a.logger, a.keyString(key), "save", err)
	}
}

// maybeTrim enforces the capacity bound at merge cadence. The newest
// entries by insertion order survive; the overflow is dropped.
func (a *ThreadSafeAccessor[K, V]) maybeTrim(ctx context.Context) {
	if a.capacity <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := a.lastTrim.Load()
	if now-last < int64(a.trimEvery) {
		return
	}
	if !a.lastTrim.CompareAndSwap(last, now) {
		return
	}
	a.trim(ctx)
}

func (a *ThreadSafeAccessor[K, V]) trim(ctx context.Context) {
	over := a.dict.Len() - a.capacity
	if over <= 0 {
		return
	}
	var entries []agedKey[K]
	a.dict.Range(func(k K, e tsEntry[V]) bool {
		entries = append(entries, agedKey[K]{key: k, seq: e.seq})
		return true
	})
	over = len(entries) - a.capacity
	if over <= 0 {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	for _, e := range entries[:over] {
		a.dict.Delete(e.key)
		a.stats.evictions.Add(1)
		observability.LogEviction(a.logger, a.keyString(e.key))
	}
	a.metrics.RecordEviction(ctx, a.id, int64(over))
}
