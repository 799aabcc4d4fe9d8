// Package typecache caches reflection metadata per type.
//
// reflect.Type lookups like flattened field sets, methods by name, and
// field accessor closures are computed once per type and memoized in
// lock-free maps, so the reflect walk never repeats on hot paths. The
// package also keeps a type name registry: types can be registered
// under stable names, with a normalized pkg.Type fallback for types
// nobody registered.
//
// All functions are safe for concurrent use.
package typecache
