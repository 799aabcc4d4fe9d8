// Package store provides second-level persistence for cache entries.
//
// A Store keeps serialized entries keyed by (namespace, key), where the
// namespace isolates independent caches sharing one store. The thread-safe
// cache accessor uses a Store as a read-through / write-through layer:
// loader results are written through, and a store hit on a cold start
// avoids re-invoking the loader.
package store

import (
	"errors"
	"time"
)

// Store persists serialized cache entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores data under (namespace, key), overwriting any previous value.
	Save(namespace, key string, data []byte) error

	// Load retrieves the data stored under (namespace, key).
	// Returns ErrNotFound if no entry exists.
	Load(namespace, key string) ([]byte, error)

	// LoadEntry is Load plus the time the entry was last saved, so
	// callers with an expiration policy can age out persisted entries.
	LoadEntry(namespace, key string) ([]byte, time.Time, error)

	// Delete removes the entry for (namespace, key).
	// Returns nil if the entry doesn't exist.
	Delete(namespace, key string) error

	// DeleteNamespace removes every entry in the namespace.
	// Returns nil if the namespace is empty.
	DeleteNamespace(namespace string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no entry exists for the requested key.
	ErrNotFound = errors.New("store: entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store: closed")
)
