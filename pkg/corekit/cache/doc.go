/*
Package cache provides bounded in-memory caches with pluggable eviction,
loader-backed population, and an optional persistent second level.

# Overview

Two cache types cover the two synchronization regimes:

  - [Cache]: a bounded eviction cache (LRU or FIFO) for single-goroutine or
    externally synchronized use. It is a plain data structure: no locks, no
    atomics, predictable cost per operation.
  - [ThreadSafeAccessor]: a concurrent read-mostly cache built with
    [NewThreadSafe]. Hits are served lock-free from a frozen read layer;
    misses invoke a loader and spill into a locked layer that is folded back
    into the lock-free layer on a merge cadence.

The split is deliberate. Wrapping Cache in a mutex would serialize the hit
path; the accessor instead trades strict LRU ordering for lock-free hits and
enforces its capacity at merge time.

# Basic Usage

	c := cache.MustNew[string, int](128)
	c.Set("a", 1)
	v, ok := c.Get("a")

With a loader:

	c, err := cache.New[string, User](1024,
	    cache.WithLoader(loadUser),
	    cache.WithPolicy(cache.FIFO),
	)
	u, err := c.GetOrLoad("alice")

# Thread-Safe Accessor

	acc, err := cache.NewThreadSafe[string, User](loadUser,
	    cache.WithCapacity[string, User](10_000),
	    cache.WithProtectedLoader[string, User](),
	    cache.WithExpiration[string, User](5*time.Minute),
	)
	u, err := acc.Get(ctx, "alice")

WithProtectedLoader collapses concurrent misses for the same key into a
single loader invocation; all callers share the result, including an error.

# Persistence

An accessor can spill through to a [store.Store] (in-memory or SQLite):

	st, _ := store.NewSQLiteStore("./cache.db")
	acc, _ := cache.NewThreadSafe[string, User](loadUser,
	    cache.WithBackingStore[string, User](st, cache.JSONCodec[User]()),
	)

Loader results are written through; on a cold start a store hit skips the
loader entirely.

# Observability

Accessors accept a structured logger, an OpenTelemetry metrics recorder, and
a span manager; see the observability package. All are optional and default
to no-ops.

# Thread Safety

  - Cache is NOT safe for concurrent use.
  - ThreadSafeAccessor IS safe for concurrent use.
  - Policy values are plain integers and safe to share.
*/
package cache
