package syncmap

import (
	"hash/maphash"
	"sync/atomic"
)

// minTableSize is the smallest slot count allocated for a table.
// Must be a power of two.
const minTableSize = 16

// box holds a value together with its liveness. A nil box pointer on an
// entry means the value was never published; a box with deleted=true is a
// tombstone. Boxes are immutable once published, so readers never observe
// a torn value.
type box[V any] struct {
	value   V
	deleted bool
}

// entry is a claimed slot in a table. The hash and key never change after
// the entry is published; only the box pointer is swapped. This is what
// allows a tombstoned slot to be resurrected for the same key without
// disturbing concurrent probes.
type entry[K comparable, V any] struct {
	hash uint64
	key  K
	val  atomic.Pointer[box[V]]
}

// load returns the entry's current value and whether it is live.
func (e *entry[K, V]) load() (V, bool) {
	b := e.val.Load()
	if b == nil || b.deleted {
		var zero V
		return zero, false
	}
	return b.value, true
}

// table is a fixed-capacity open-addressed hash table with linear probing.
// Slots are claimed at most once via CAS; values are updated by swapping
// the entry's box pointer. A table never rehashes in place: growth builds
// a new table and the old one is frozen first.
type table[K comparable, V any] struct {
	mask  uint64
	slots []atomic.Pointer[entry[K, V]]

	// used counts claimed slots, including tombstones. It only grows.
	used atomic.Int64
	// live counts entries whose current box is not a tombstone.
	live atomic.Int64

	// frozen is set (under the owner's growth mutex) before the table is
	// copied into its replacement. Writers that observe frozen must retry
	// on the current table.
	frozen atomic.Bool

	// growAt is the used count at which writers should trigger growth.
	growAt int64
}

// newTable allocates a table with the given slot count, which must be a
// power of two and at least minTableSize.
func newTable[K comparable, V any](size int) *table[K, V] {
	t := &table[K, V]{
		mask:  uint64(size - 1),
		slots: make([]atomic.Pointer[entry[K, V]], size),
	}
	// Keep the load factor at 3/4 so probes terminate quickly.
	t.growAt = int64(size) - int64(size)/4
	return t
}

// tableSizeFor returns the smallest valid table size holding n entries
// within the load factor.
func tableSizeFor(n int) int {
	size := minTableSize
	for int64(size)-int64(size)/4 < int64(n) {
		size <<= 1
	}
	return size
}

// lookup probes for the entry holding key. It returns nil if the key has
// never been inserted into this table. Wait-free: at most len(slots) loads.
func (t *table[K, V]) lookup(hash uint64, key K) *entry[K, V] {
	for i, n := hash&t.mask, uint64(0); n <= t.mask; i, n = (i+1)&t.mask, n+1 {
		e := t.slots[i].Load()
		if e == nil {
			return nil
		}
		if e.hash == hash && e.key == key {
			return e
		}
	}
	return nil
}

// insert claims a slot for key, or returns the existing entry for it.
// claimed reports whether a new slot was taken. A false, nil return means
// the table is out of room and the caller must grow.
func (t *table[K, V]) insert(hash uint64, key K) (e *entry[K, V], claimed bool) {
	for i, n := hash&t.mask, uint64(0); n <= t.mask; i, n = (i+1)&t.mask, n+1 {
		cur := t.slots[i].Load()
		if cur == nil {
			if t.used.Load() >= t.growAt {
				return nil, false
			}
			fresh := &entry[K, V]{hash: hash, key: key}
			if t.slots[i].CompareAndSwap(nil, fresh) {
				t.used.Add(1)
				return fresh, true
			}
			// Lost the race for this slot; re-examine it.
			cur = t.slots[i].Load()
		}
		if cur.hash == hash && cur.key == key {
			return cur, false
		}
	}
	return nil, false
}

// setValue publishes a value on e and keeps the live counter consistent.
// It returns the previous value, if any.
func (t *table[K, V]) setValue(e *entry[K, V], v V) (prev V, had bool) {
	b := &box[V]{value: v}
	old := e.val.Swap(b)
	if old == nil || old.deleted {
		t.live.Add(1)
		var zero V
		return zero, false
	}
	return old.value, true
}

// deleteValue tombstones e. It returns the removed value, if e was live.
func (t *table[K, V]) deleteValue(e *entry[K, V]) (prev V, had bool) {
	for {
		old := e.val.Load()
		if old == nil || old.deleted {
			var zero V
			return zero, false
		}
		if e.val.CompareAndSwap(old, &box[V]{deleted: true}) {
			t.live.Add(-1)
			return old.value, true
		}
	}
}

// place stores an existing entry pointer into the table. Sharing the entry
// keeps concurrent box swaps on it visible through the new table. Only for
// construction under the owner's lock; the key must not already be present.
func (t *table[K, V]) place(e *entry[K, V]) {
	for i := e.hash & t.mask; ; i = (i + 1) & t.mask {
		if t.slots[i].Load() == nil {
			t.slots[i].Store(e)
			t.used.Add(1)
			if b := e.val.Load(); b != nil && !b.deleted {
				t.live.Add(1)
			}
			return
		}
	}
}

// rangeEntries calls f for every live entry. Returned entries reflect one
// table generation; concurrent writes may or may not be observed.
func (t *table[K, V]) rangeEntries(f func(k K, v V) bool) bool {
	for i := range t.slots {
		e := t.slots[i].Load()
		if e == nil {
			continue
		}
		if v, ok := e.load(); ok {
			if !f(e.key, v) {
				return false
			}
		}
	}
	return true
}

// hashOf computes the hash of key under seed.
func hashOf[K comparable](seed maphash.Seed, key K) uint64 {
	return maphash.Comparable(seed, key)
}
