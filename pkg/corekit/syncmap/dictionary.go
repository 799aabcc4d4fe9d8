package syncmap

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMergeInterval is how long spilled keys may stay in the locked
// layer before a write folds them into a fresh lock-free layer.
const DefaultMergeInterval = 100 * time.Millisecond

// Dictionary is a concurrent map tuned for key populations that stabilize
// over time.
//
// Established keys live in a frozen lock-free layer: reads, updates, and
// deletes for them never take a lock (values are immutable boxes swapped
// atomically, deletes are tombstones). Keys first seen since the last merge
// go to a small mutex-guarded spill map. Once the merge interval elapses,
// the next locked write rebuilds the lock-free layer from both.
//
// The spill map never holds a key present in the lock-free layer, so a
// lookup that hits the lock-free layer is authoritative, tombstone or not.
type Dictionary[K comparable, V any] struct {
	seed       maphash.Seed
	mergeEvery time.Duration
	preserve   bool

	mu         sync.RWMutex
	read       atomic.Pointer[table[K, V]] // replaced only under mu, probed without it
	spill      map[K]V
	firstSpill time.Time
}

// DictionaryOption configures a Dictionary.
type DictionaryOption func(*dictConfig)

type dictConfig struct {
	mergeEvery time.Duration
	capacity   int
	preserve   bool
}

// WithMergeInterval sets how long new keys may remain in the locked spill
// layer before a merge. Default: DefaultMergeInterval.
func WithMergeInterval(d time.Duration) DictionaryOption {
	return func(c *dictConfig) {
		if d > 0 {
			c.mergeEvery = d
		}
	}
}

// WithInitialCapacity pre-sizes the lock-free layer for n entries.
func WithInitialCapacity(n int) DictionaryOption {
	return func(c *dictConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithPreserveMergedKeys keeps tombstoned slots across merges. Keys that
// are deleted and later re-added stay permanently lock-free-writable, at
// the cost of retaining their slots.
func WithPreserveMergedKeys() DictionaryOption {
	return func(c *dictConfig) {
		c.preserve = true
	}
}

// NewDictionary creates an empty Dictionary.
func NewDictionary[K comparable, V any](opts ...DictionaryOption) *Dictionary[K, V] {
	cfg := dictConfig{mergeEvery: DefaultMergeInterval, capacity: minTableSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	d := &Dictionary[K, V]{
		seed:       maphash.MakeSeed(),
		mergeEvery: cfg.mergeEvery,
		preserve:   cfg.preserve,
		spill:      make(map[K]V),
	}
	d.read.Store(newTable[K, V](tableSizeFor(cfg.capacity)))
	return d
}

// layer returns the current lock-free layer without locking.
func (d *Dictionary[K, V]) layer() *table[K, V] {
	return d.read.Load()
}

// Load returns the value stored for key, if any.
//
// Keys in the lock-free layer are answered without locking; keys written
// since the last merge take a read lock on the spill map.
func (d *Dictionary[K, V]) Load(key K) (V, bool) {
	h := hashOf(d.seed, key)
	if e := d.layer().lookup(h, key); e != nil {
		return e.load()
	}
	d.mu.RLock()
	v, ok := d.spill[key]
	d.mu.RUnlock()
	return v, ok
}

// Store sets the value for key.
func (d *Dictionary[K, V]) Store(key K, value V) {
	h := hashOf(d.seed, key)
	t := d.layer()
	if e := t.lookup(h, key); e != nil {
		t.setValue(e, value)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// The layer may have been rebuilt while we waited for the lock.
	t = d.layer()
	if e := t.lookup(h, key); e != nil {
		t.setValue(e, value)
		return
	}
	if len(d.spill) == 0 {
		d.firstSpill = time.Now()
	}
	d.spill[key] = value
	d.maybeMergeLocked()
}

// LoadOrStore returns the existing value for key if present; otherwise it
// stores and returns the given value.
func (d *Dictionary[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	h := hashOf(d.seed, key)
	t := d.layer()
	if e := t.lookup(h, key); e != nil {
		return d.reviveOrLoad(t, e, value)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	t = d.layer()
	if e := t.lookup(h, key); e != nil {
		return d.reviveOrLoad(t, e, value)
	}
	if v, ok := d.spill[key]; ok {
		return v, true
	}
	if len(d.spill) == 0 {
		d.firstSpill = time.Now()
	}
	d.spill[key] = value
	d.maybeMergeLocked()
	return value, false
}

// reviveOrLoad returns the live value on e, or resurrects the tombstoned
// slot with value.
func (d *Dictionary[K, V]) reviveOrLoad(t *table[K, V], e *entry[K, V], value V) (V, bool) {
	for {
		old := e.val.Load()
		if old != nil && !old.deleted {
			return old.value, true
		}
		if e.val.CompareAndSwap(old, &box[V]{value: value}) {
			t.live.Add(1)
			return value, false
		}
	}
}

// Delete removes key from the dictionary.
func (d *Dictionary[K, V]) Delete(key K) {
	d.LoadAndDelete(key)
}

// LoadAndDelete removes key and returns its previous value, if any.
func (d *Dictionary[K, V]) LoadAndDelete(key K) (V, bool) {
	h := hashOf(d.seed, key)
	t := d.layer()
	if e := t.lookup(h, key); e != nil {
		return t.deleteValue(e)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	t = d.layer()
	if e := t.lookup(h, key); e != nil {
		return t.deleteValue(e)
	}
	v, ok := d.spill[key]
	if ok {
		delete(d.spill, key)
	}
	return v, ok
}

// Len returns the number of entries. Exact when the dictionary is
// quiescent; approximate while writes race a merge.
func (d *Dictionary[K, V]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := int(d.layer().live.Load()) + len(d.spill)
	if n < 0 {
		return 0
	}
	return n
}

// Range calls f for each key and value until f returns false. Entries from
// the lock-free layer reflect its current state; spilled entries are
// snapshotted before f runs so f may call back into the dictionary.
func (d *Dictionary[K, V]) Range(f func(key K, value V) bool) {
	if !d.layer().rangeEntries(f) {
		return
	}
	d.mu.RLock()
	spilled := make(map[K]V, len(d.spill))
	for k, v := range d.spill {
		spilled[k] = v
	}
	d.mu.RUnlock()
	for k, v := range spilled {
		if !f(k, v) {
			return
		}
	}
}

// Merge folds spilled keys into a fresh lock-free layer immediately,
// regardless of the merge interval.
func (d *Dictionary[K, V]) Merge() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.spill) > 0 {
		d.mergeLocked()
	}
}

// Clear removes all entries.
func (d *Dictionary[K, V]) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.read.Store(newTable[K, V](minTableSize))
	d.spill = make(map[K]V)
	d.firstSpill = time.Time{}
}

// maybeMergeLocked merges once the interval since the first spilled write
// has elapsed. Caller holds mu.
func (d *Dictionary[K, V]) maybeMergeLocked() {
	if len(d.spill) == 0 {
		return
	}
	if time.Since(d.firstSpill) < d.mergeEvery {
		return
	}
	d.mergeLocked()
}

// mergeLocked rebuilds the lock-free layer and publishes it. Entries carried
// over keep their identity, so lock-free writes racing the merge remain
// visible through the new layer. A tombstoned entry not carried over (no
// WithPreserveMergedKeys) can lose a racing resurrection; delete-heavy key
// sets should opt into preservation. Caller holds mu.
func (d *Dictionary[K, V]) mergeLocked() {
	old := d.layer()
	need := int(old.live.Load()) + len(d.spill)
	if d.preserve {
		need = int(old.used.Load()) + len(d.spill)
	}
	if need < 1 {
		need = 1
	}
	nt := newTable[K, V](tableSizeFor(need * 2))

	for i := range old.slots {
		e := old.slots[i].Load()
		if e == nil {
			continue
		}
		if b := e.val.Load(); b == nil || (b.deleted && !d.preserve) {
			continue
		}
		nt.place(e)
	}
	for k, v := range d.spill {
		ne, _ := nt.insert(hashOf(d.seed, k), k)
		nt.setValue(ne, v)
	}

	d.read.Store(nt)
	d.spill = make(map[K]V)
	d.firstSpill = time.Time{}
}
