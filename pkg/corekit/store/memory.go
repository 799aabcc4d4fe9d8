package store

import (
	"sync"
	"time"
)

// memEntry is one stored value with its save time.
type memEntry struct {
	data    []byte
	savedAt time.Time
}

// MemoryStore is an in-memory Store for testing and ephemeral use.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]memEntry // namespace -> key -> entry
	closed bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]memEntry),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(namespace, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]memEntry)
	}

	// Copy so we don't retain the caller's slice.
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[namespace][key] = memEntry{data: stored, savedAt: time.Now()}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(namespace, key string) ([]byte, error) {
	data, _, err := m.LoadEntry(namespace, key)
	return data, err
}

// LoadEntry implements Store.
func (m *MemoryStore) LoadEntry(namespace, key string) ([]byte, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, time.Time{}, ErrStoreClosed
	}

	ns, ok := m.data[namespace]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	e, ok := ns[key]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}

	result := make([]byte, len(e.data))
	copy(result, e.data)
	return result, e.savedAt, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if ns, ok := m.data[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

// DeleteNamespace implements Store.
func (m *MemoryStore) DeleteNamespace(namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, namespace)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of entries across all namespaces.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ns := range m.data {
		count += len(ns)
	}
	return count
}
