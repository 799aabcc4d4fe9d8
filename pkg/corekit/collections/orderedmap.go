package collections

// OrderedMap is a map that remembers insertion order. Lookup, insert, and
// delete are O(1); iteration visits entries oldest first. Updating the value
// of an existing key does not change its position.
//
// OrderedMap is not safe for concurrent use.
type OrderedMap[K comparable, V any] struct {
	nodes map[K]*node[K, V]
	root  node[K, V] // sentinel: root.next is oldest, root.prev is newest
}

type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	m := &OrderedMap[K, V]{nodes: make(map[K]*node[K, V])}
	m.root.prev = &m.root
	m.root.next = &m.root
	return m
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int { return len(m.nodes) }

// Get returns the value for key, if present.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	if n, ok := m.nodes[key]; ok {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Set stores value for key. New keys are appended at the newest end.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if n, ok := m.nodes[key]; ok {
		n.value = value
		return
	}
	n := &node[K, V]{key: key, value: value, prev: m.root.prev, next: &m.root}
	m.root.prev.next = n
	m.root.prev = n
	m.nodes[key] = n
}

// Delete removes key and reports whether it was present.
func (m *OrderedMap[K, V]) Delete(key K) bool {
	n, ok := m.nodes[key]
	if !ok {
		return false
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	delete(m.nodes, key)
	return true
}

// MoveToNewest moves key to the newest end of the order, if present.
// This is the primitive an LRU cache needs on every hit.
func (m *OrderedMap[K, V]) MoveToNewest(key K) bool {
	n, ok := m.nodes[key]
	if !ok {
		return false
	}
	if m.root.prev == n {
		return true
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = m.root.prev
	n.next = &m.root
	m.root.prev.next = n
	m.root.prev = n
	return true
}

// Oldest returns the least recently inserted entry.
func (m *OrderedMap[K, V]) Oldest() (K, V, bool) {
	if len(m.nodes) == 0 {
		var k K
		var v V
		return k, v, false
	}
	n := m.root.next
	return n.key, n.value, true
}

// Newest returns the most recently inserted entry.
func (m *OrderedMap[K, V]) Newest() (K, V, bool) {
	if len(m.nodes) == 0 {
		var k K
		var v V
		return k, v, false
	}
	n := m.root.prev
	return n.key, n.value, true
}

// Keys returns all keys, oldest first.
func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.nodes))
	for n := m.root.next; n != &m.root; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// Range calls f for each entry, oldest first, until f returns false.
// f must not add or delete entries.
func (m *OrderedMap[K, V]) Range(f func(key K, value V) bool) {
	for n := m.root.next; n != &m.root; n = n.next {
		if !f(n.key, n.value) {
			return
		}
	}
}

// Clear removes all entries.
func (m *OrderedMap[K, V]) Clear() {
	m.nodes = make(map[K]*node[K, V])
	m.root.prev = &m.root
	m.root.next = &m.root
}
