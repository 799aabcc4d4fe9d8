package cache

import (
	"github.com/abalassy/corekit/pkg/corekit/collections"
)

// LoaderFunc computes the value for a missing key.
type LoaderFunc[K comparable, V any] func(key K) (V, error)

// EvictFunc is notified when an entry leaves the cache: capacity eviction,
// explicit Remove, or Clear. It must not call back into the cache.
type EvictFunc[K comparable, V any] func(key K, value V)

// Cache is a bounded eviction cache.
//
// Entry order is tracked in an ordered map; under LRU a hit promotes the
// entry to the newest position, under FIFO the insertion order stands.
// When an insert exceeds capacity the oldest entry is evicted.
//
// Cache is not safe for concurrent use; wrap access in your own
// synchronization or use NewThreadSafe for a concurrent cache.
type Cache[K comparable, V any] struct {
	entries  *collections.OrderedMap[K, V]
	capacity int
	policy   Policy
	loader   LoaderFunc[K, V]
	onEvict  EvictFunc[K, V]
	stats    Stats
}

// New creates a Cache with the given capacity.
// Returns ErrInvalidCapacity if capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	c := &Cache[K, V]{
		entries:  collections.NewOrderedMap[K, V](),
		capacity: capacity,
		policy:   LRU,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustNew is like New but panics on invalid capacity.
func MustNew[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	c, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int { return c.entries.Len() }

// Capacity returns the configured capacity.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Policy returns the eviction policy.
func (c *Cache[K, V]) Policy() Policy { return c.policy }

// Get returns the value for key. Under LRU a hit promotes the entry.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.stats.Reads++
	v, ok := c.entries.Get(key)
	if !ok {
		c.stats.Misses++
		return v, false
	}
	c.stats.Hits++
	if c.policy == LRU {
		c.entries.MoveToNewest(key)
	}
	return v, true
}

// Peek returns the value for key without promoting it under LRU.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.stats.Reads++
	v, ok := c.entries.Get(key)
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

// GetOrLoad returns the value for key, invoking the loader on a miss and
// caching the result. Loader failures are returned as *LoadError and
// nothing is cached.
func (c *Cache[K, V]) GetOrLoad(key K) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	var zero V
	if c.loader == nil {
		return zero, ErrNoLoader
	}
	v, err := c.loader(key)
	if err != nil {
		c.stats.LoadErrors++
		return zero, &LoadError{Key: key, Err: err}
	}
	c.stats.Loads++
	c.Set(key, v)
	return v, nil
}

// Set stores value for key, evicting the oldest entry if the insert
// exceeds capacity. Updating a resident key does not evict; under LRU it
// promotes the entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.stats.Writes++
	if _, ok := c.entries.Get(key); ok {
		c.entries.Set(key, value)
		if c.policy == LRU {
			c.entries.MoveToNewest(key)
		}
		return
	}
	c.entries.Set(key, value)
	c.evictOverflow()
}

// Touch promotes key to the newest position without reading its value.
// Under FIFO it only reports residency. Returns false if key is absent.
func (c *Cache[K, V]) Touch(key K) bool {
	if c.policy != LRU {
		_, ok := c.entries.Get(key)
		return ok
	}
	return c.entries.MoveToNewest(key)
}

// RefreshValue re-invokes the loader for a resident key and replaces the
// value in place, keeping the entry's position.
func (c *Cache[K, V]) RefreshValue(key K) error {
	if c.loader == nil {
		return ErrNoLoader
	}
	if _, ok := c.entries.Get(key); !ok {
		return ErrKeyNotFound
	}
	v, err := c.loader(key)
	if err != nil {
		c.stats.LoadErrors++
		return &LoadError{Key: key, Err: err}
	}
	c.stats.Loads++
	c.stats.Writes++
	c.entries.Set(key, v)
	return nil
}

// Remove deletes key and reports whether it was resident.
// The eviction callback fires for removed entries.
func (c *Cache[K, V]) Remove(key K) bool {
	v, ok := c.entries.Get(key)
	if !ok {
		return false
	}
	c.entries.Delete(key)
	c.stats.Deletes++
	if c.onEvict != nil {
		c.onEvict(key, v)
	}
	return true
}

// Clear removes every entry, firing the eviction callback for each.
func (c *Cache[K, V]) Clear() {
	if c.onEvict != nil {
		c.entries.Range(func(k K, v V) bool {
			c.onEvict(k, v)
			return true
		})
	}
	c.stats.Deletes += int64(c.entries.Len())
	c.entries.Clear()
}

// SetCapacity changes the capacity, evicting oldest entries immediately
// if the cache shrinks below its current size.
func (c *Cache[K, V]) SetCapacity(n int) error {
	if n <= 0 {
		return ErrInvalidCapacity
	}
	c.capacity = n
	c.evictOverflow()
	return nil
}

// Keys returns the resident keys in eviction order, oldest first.
func (c *Cache[K, V]) Keys() []K {
	return c.entries.Keys()
}

// OnEvict replaces the eviction callback. Pass nil to disable it.
func (c *Cache[K, V]) OnEvict(fn EvictFunc[K, V]) { c.onEvict = fn }

// Stats returns a snapshot of the activity counters.
func (c *Cache[K, V]) Stats() Stats { return c.stats }

// ResetStats zeroes the activity counters.
func (c *Cache[K, V]) ResetStats() { c.stats = Stats{} }

// evictOverflow evicts oldest entries until size fits capacity.
func (c *Cache[K, V]) evictOverflow() {
	for c.entries.Len() > c.capacity {
		k, v, ok := c.entries.Oldest()
		if !ok {
			return
		}
		c.entries.Delete(k)
		c.stats.Evictions++
		if c.onEvict != nil {
			c.onEvict(k, v)
		}
	}
}
