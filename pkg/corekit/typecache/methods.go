package typecache

import (
	"reflect"

	"github.com/abalassy/corekit/pkg/corekit/syncmap"
)

type methodKey struct {
	typ  reflect.Type
	name string
}

var methodCache syncmap.Map[methodKey, reflect.Method]

// MethodByName returns t's method named name, caching the lookup.
// Pointer receivers are honored: pass the pointer type to see pointer
// methods, matching reflect.Type.MethodByName.
func MethodByName(t reflect.Type, name string) (reflect.Method, bool) {
	if t == nil {
		return reflect.Method{}, false
	}
	key := methodKey{typ: t, name: name}
	if m, ok := methodCache.Load(key); ok {
		return m, m.Index >= 0
	}
	m, ok := t.MethodByName(name)
	if !ok {
		// Negative results are cached as the zero Method with a
		// sentinel index.
		m = reflect.Method{Index: -1}
	}
	actual, _ := methodCache.LoadOrStore(key, m)
	return actual, actual.Index >= 0
}
