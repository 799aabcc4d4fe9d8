package typecache

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/abalassy/corekit/pkg/corekit/syncmap"
)

var (
	// ErrNotStruct indicates the target value is not a struct or
	// pointer to struct.
	ErrNotStruct = errors.New("typecache: value is not a struct")

	// ErrNilValue indicates a nil value or nil pointer target.
	ErrNilValue = errors.New("typecache: nil value")

	// ErrNotAddressable indicates a setter was given a value it cannot
	// write through, typically a struct passed by value.
	ErrNotAddressable = errors.New("typecache: value is not addressable, pass a pointer")

	// ErrUnexportedEmbed indicates a setter needed to allocate a nil
	// embedded pointer held in an unexported field, which reflect
	// cannot write to.
	ErrUnexportedEmbed = errors.New("typecache: cannot allocate nil pointer in unexported embedded field")
)

// GetterFunc reads one field from a struct value.
type GetterFunc func(v any) (any, error)

// SetterFunc writes one field of a struct pointed to by v.
type SetterFunc func(v any, val any) error

type accessorKey struct {
	typ  reflect.Type
	name string
}

var (
	getterCache syncmap.Map[accessorKey, GetterFunc]
	setterCache syncmap.Map[accessorKey, SetterFunc]
)

// Getter returns a cached closure reading field name from values of
// type t. The closure accepts t or *t. Returns false if t has no such
// exported field.
func Getter(t reflect.Type, name string) (GetterFunc, bool) {
	t = derefType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	key := accessorKey{typ: t, name: name}
	if fn, ok := getterCache.Load(key); ok {
		return fn, true
	}
	f, ok := FieldByName(t, name)
	if !ok {
		return nil, false
	}
	fn := GetterFunc(func(v any) (any, error) {
		rv, err := structValue(v, t)
		if err != nil {
			return nil, err
		}
		fv, err := fieldByIndex(rv, f.Index, false)
		if err != nil {
			return nil, err
		}
		return fv.Interface(), nil
	})
	actual, _ := getterCache.LoadOrStore(key, fn)
	return actual, true
}

// Setter returns a cached closure writing field name on values of type
// t. The closure requires a *t target and a value assignable to the
// field's type. Returns false if t has no such exported field.
//
// Fields promoted through a nil embedded pointer are allocated on the
// way down, but only when the embedded field itself is exported; an
// unexported one yields ErrUnexportedEmbed.
func Setter(t reflect.Type, name string) (SetterFunc, bool) {
	t = derefType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	key := accessorKey{typ: t, name: name}
	if fn, ok := setterCache.Load(key); ok {
		return fn, true
	}
	f, ok := FieldByName(t, name)
	if !ok {
		return nil, false
	}
	fn := SetterFunc(func(v any, val any) error {
		if v == nil {
			return ErrNilValue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return ErrNotAddressable
		}
		if rv.IsNil() {
			return ErrNilValue
		}
		rv = rv.Elem()
		if rv.Type() != t {
			return fmt.Errorf("typecache: expected *%s, got %T", t, v)
		}
		fv, err := fieldByIndex(rv, f.Index, true)
		if err != nil {
			return err
		}
		if !fv.CanSet() {
			// Reached through an unexported embedded field.
			return ErrUnexportedEmbed
		}
		nv := reflect.ValueOf(val)
		if !nv.IsValid() {
			// Setting a nil literal zeroes the field.
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		if !nv.Type().AssignableTo(fv.Type()) {
			return fmt.Errorf("typecache: cannot assign %s to field %s of type %s", nv.Type(), name, fv.Type())
		}
		fv.Set(nv)
		return nil
	})
	actual, _ := setterCache.LoadOrStore(key, fn)
	return actual, true
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// structValue unwraps v to a struct reflect.Value of type want.
func structValue(v any, want reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Value{}, ErrNilValue
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, ErrNilValue
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	if rv.Type() != want {
		return reflect.Value{}, fmt.Errorf("typecache: expected %s, got %T", want, v)
	}
	return rv, nil
}

// fieldByIndex walks an index path, dereferencing intermediate embedded
// pointers. When alloc is set, nil intermediates are allocated so the
// leaf is writable; otherwise a nil intermediate is an error. Allocation
// only works through exported embedded fields: reflect refuses writes to
// unexported ones, which surfaces as ErrUnexportedEmbed.
func fieldByIndex(rv reflect.Value, index []int, alloc bool) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 {
			for rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					if !alloc {
						return reflect.Value{}, ErrNilValue
					}
					if !rv.CanSet() {
						return reflect.Value{}, ErrUnexportedEmbed
					}
					rv.Set(reflect.New(rv.Type().Elem()))
				}
				rv = rv.Elem()
			}
		}
		rv = rv.Field(x)
	}
	return rv, nil
}
