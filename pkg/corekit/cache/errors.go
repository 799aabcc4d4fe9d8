package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors for cache construction and use.
var (
	// ErrInvalidCapacity indicates a capacity that is zero or negative.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrNoLoader indicates GetOrLoad or RefreshValue was called on a
	// cache built without WithLoader.
	ErrNoLoader = errors.New("no loader configured")

	// ErrKeyNotFound indicates RefreshValue was called for a key that is
	// not resident.
	ErrKeyNotFound = errors.New("key not resident")

	// ErrNilLoader indicates NewThreadSafe was called with a nil loader.
	ErrNilLoader = errors.New("loader cannot be nil")
)

// LoadError wraps a loader failure with the key that was being loaded.
type LoadError struct {
	// Key is the key whose load failed.
	Key any
	// Err is the underlying error from the loader.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load key %v: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// CodecError wraps a serialization failure on the backing store path.
type CodecError struct {
	// Key is the key whose value failed to encode or decode.
	Key any
	// Op is "encode" or "decode".
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	return fmt.Sprintf("%s value for key %v: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CodecError) Unwrap() error {
	return e.Err
}
