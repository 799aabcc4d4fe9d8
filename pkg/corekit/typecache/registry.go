package typecache

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/abalassy/corekit/pkg/corekit/syncmap"
)

var (
	// ErrNilType indicates a nil reflect.Type was provided.
	ErrNilType = errors.New("typecache: nil reflect.Type")

	// ErrEmptyName indicates an empty registration name.
	ErrEmptyName = errors.New("typecache: empty name")

	// ErrConflictingName indicates an attempt to re-register a type
	// under a different name.
	ErrConflictingName = errors.New("typecache: conflicting type registration")
)

// maxUnwrap bounds the container unwrapping depth during type
// normalization.
const maxUnwrap = 8

// Registry maps types to stable names.
//
// Registration normalizes the type first: pointers, slices, arrays,
// channels and maps are unwrapped to the nearest named inner type, so
// registering *T, []T, or map[string]T all name T. Re-registering the
// same (type, name) pair is a no-op; a different name is a conflict.
type Registry struct {
	mu    sync.Mutex
	names syncmap.Map[reflect.Type, string]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates the nearest named type of t with name.
func (r *Registry) Register(t reflect.Type, name string) error {
	if t == nil {
		return ErrNilType
	}
	if name == "" {
		return ErrEmptyName
	}
	nt, ok := normalizeType(t)
	if !ok {
		return ErrNilType
	}

	// Lock-free idempotency / conflict check first.
	if old, ok := r.names.Load(nt); ok {
		if old == name {
			return nil
		}
		return ErrConflictingName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.names.Load(nt); ok {
		if old == name {
			return nil
		}
		return ErrConflictingName
	}
	r.names.Store(nt, name)
	return nil
}

// Lookup returns the registered name for t's normalized type.
func (r *Registry) Lookup(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	nt, ok := normalizeType(t)
	if !ok {
		return "", false
	}
	return r.names.Load(nt)
}

// Name returns the registered name for t, falling back to the
// normalized type's pkg.Type form with generic parameters stripped.
// Returns "" for nil or unnameable types.
func (r *Registry) Name(t reflect.Type) string {
	if name, ok := r.Lookup(t); ok {
		return name
	}
	nt, ok := normalizeType(t)
	if !ok {
		return ""
	}
	return defaultTypeName(nt)
}

// Reset drops every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names.Clear()
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return r.names.Len()
}

var defaultRegistry = NewRegistry()

// RegisterName associates t's nearest named type with name in the
// package-level registry.
func RegisterName(t reflect.Type, name string) error {
	return defaultRegistry.Register(t, name)
}

// NameOf returns t's registered name, or its normalized pkg.Type form
// when nothing was registered.
func NameOf(t reflect.Type) string {
	return defaultRegistry.Name(t)
}

// normalizeType unwraps containers to the nearest named inner type.
// Maps prefer the element side, falling back to the key.
func normalizeType(t reflect.Type) (reflect.Type, bool) {
	for i := 0; t != nil && i < maxUnwrap; i++ {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()
		case reflect.Map:
			if et := t.Elem(); et.Name() != "" {
				return et, true
			}
			if kt := t.Key(); kt.Name() != "" {
				return kt, true
			}
			t = t.Elem()
		default:
			if t.Name() != "" {
				return t, true
			}
			return nil, false
		}
	}
	if t != nil && t.Name() != "" {
		return t, true
	}
	return nil, false
}

// defaultTypeName renders a named type as pkg.Type, stripping generic
// type parameters so List[int] and List[string] share a name.
func defaultTypeName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if pkg := t.PkgPath(); pkg != "" {
		if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
			pkg = pkg[i+1:]
		}
		return pkg + "." + name
	}
	return name
}
