package syncmap

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
)

// Map is a lock-free growable hash map with type-safe generics.
//
// Reads are wait-free: Load probes the current table with atomic loads only.
// Writes are lock-free on the current table: inserting a key claims a slot
// with a single CAS, and updating or deleting swaps an immutable value box.
// The only mutex in the structure guards growth, which freezes the current
// table, copies live entries into a table twice the size, and publishes the
// replacement with an atomic pointer swap.
//
// Writes that race with growth detect the frozen table afterwards and
// re-apply themselves on the replacement, so the map is last-write-wins
// across a growth boundary.
//
// The zero value is ready to use. A Map must not be copied after first use.
type Map[K comparable, V any] struct {
	initOnce sync.Once
	seed     maphash.Seed

	cur    atomic.Pointer[table[K, V]]
	growMu sync.Mutex
}

// init lazily installs the seed and the initial table.
func (m *Map[K, V]) init() {
	m.initOnce.Do(func() {
		m.seed = maphash.MakeSeed()
		m.cur.Store(newTable[K, V](minTableSize))
	})
}

// current returns a non-frozen table, waiting out any in-flight growth.
func (m *Map[K, V]) current() *table[K, V] {
	for {
		t := m.cur.Load()
		if !t.frozen.Load() {
			return t
		}
		// Growth in progress: the grower holds growMu until the new
		// table is published. Queue behind it rather than spinning.
		m.growMu.Lock()
		m.growMu.Unlock() //nolint:staticcheck // empty critical section is the point
	}
}

// Load returns the value stored for key, if any. It never blocks.
func (m *Map[K, V]) Load(key K) (V, bool) {
	t := m.cur.Load()
	if t == nil {
		var zero V
		return zero, false
	}
	e := t.lookup(hashOf(m.seed, key), key)
	if e == nil {
		var zero V
		return zero, false
	}
	return e.load()
}

// Store sets the value for key, inserting it if absent.
func (m *Map[K, V]) Store(key K, value V) {
	m.init()
	h := hashOf(m.seed, key)
	for {
		t := m.current()
		e, _ := t.insert(h, key)
		if e == nil {
			m.grow(t)
			continue
		}
		t.setValue(e, value)
		if !t.frozen.Load() && m.cur.Load() == t {
			return
		}
		// Raced with growth; the write may have missed the copy.
	}
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores and returns the given value. loaded is true if the value was read.
//
// Once this call has published its value, it reports loaded=false even if
// a growth race forces a retry and the retry observes the value already in
// the replacement table; the caller owns exactly one successful store.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	m.init()
	h := hashOf(m.seed, key)
	published := false
	for {
		t := m.current()
		e, _ := t.insert(h, key)
		if e == nil {
			m.grow(t)
			continue
		}
		if v, ok := e.load(); ok {
			if published {
				// The retry found our own (possibly since overwritten)
				// publication; this call still performed the store.
				return value, false
			}
			return v, true
		}
		// Slot is fresh or tombstoned: publish our value unless a
		// concurrent writer beats us to it.
		for {
			old := e.val.Load()
			if old != nil && !old.deleted {
				if published {
					return value, false
				}
				return old.value, true
			}
			if e.val.CompareAndSwap(old, &box[V]{value: value}) {
				t.live.Add(1)
				published = true
				break
			}
		}
		if !t.frozen.Load() && m.cur.Load() == t {
			return value, false
		}
		// Raced with growth; confirm on the replacement table.
	}
}

// Delete removes key from the map.
func (m *Map[K, V]) Delete(key K) {
	m.LoadAndDelete(key)
}

// LoadAndDelete removes key and returns its previous value, if any.
func (m *Map[K, V]) LoadAndDelete(key K) (V, bool) {
	m.init()
	h := hashOf(m.seed, key)
	var (
		prev V
		had  bool
	)
	for {
		t := m.current()
		e := t.lookup(h, key)
		if e == nil {
			return prev, had
		}
		if v, ok := t.deleteValue(e); ok && !had {
			prev, had = v, true
		}
		if !t.frozen.Load() && m.cur.Load() == t {
			return prev, had
		}
		// Raced with growth; tombstone the copy as well.
	}
}

// CompareAndSwap swaps the old and new values for key if the stored value
// equals old. Like sync.Map, it panics at runtime if V is not comparable.
func (m *Map[K, V]) CompareAndSwap(key K, old, new V) bool {
	m.init()
	h := hashOf(m.seed, key)
	for {
		t := m.current()
		e := t.lookup(h, key)
		if e == nil {
			return false
		}
		b := e.val.Load()
		if b == nil || b.deleted {
			return false
		}
		if any(b.value) != any(old) {
			return false
		}
		if !e.val.CompareAndSwap(b, &box[V]{value: new}) {
			continue
		}
		if !t.frozen.Load() && m.cur.Load() == t {
			return true
		}
		// Raced with growth: the copy may still hold old. Retry on the
		// replacement; finding new there terminates via the equality check.
		if v, ok := m.Load(key); ok && any(v) == any(new) {
			return true
		}
	}
}

// Len returns the number of live entries. The result is exact when the map
// is quiescent and approximate under concurrent writes.
func (m *Map[K, V]) Len() int {
	t := m.cur.Load()
	if t == nil {
		return 0
	}
	n := t.live.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Range calls f for each key and value present in the map until f returns
// false. It observes one table generation; writes concurrent with Range may
// or may not be visible.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	t := m.cur.Load()
	if t == nil {
		return
	}
	t.rangeEntries(f)
}

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	m.init()
	m.growMu.Lock()
	defer m.growMu.Unlock()
	old := m.cur.Load()
	old.frozen.Store(true)
	m.cur.Store(newTable[K, V](minTableSize))
}

// grow replaces old with a table sized for twice the live entries.
// No-op if another goroutine already replaced it.
func (m *Map[K, V]) grow(old *table[K, V]) {
	m.growMu.Lock()
	defer m.growMu.Unlock()
	if m.cur.Load() != old {
		return
	}
	old.frozen.Store(true)

	live := int(old.live.Load())
	if live < 1 {
		live = 1
	}
	nt := newTable[K, V](tableSizeFor(live * 2))
	for i := range old.slots {
		e := old.slots[i].Load()
		if e == nil {
			continue
		}
		if v, ok := e.load(); ok {
			ne, _ := nt.insert(e.hash, e.key)
			nt.setValue(ne, v)
		}
	}
	m.cur.Store(nt)
}
