package typecache

import (
	"reflect"

	"github.com/abalassy/corekit/pkg/corekit/syncmap"
)

// Field describes one exported field of a struct type, including fields
// promoted from embedded structs.
type Field struct {
	// Name is the field's name.
	Name string
	// Index is the index path for reflect.Value.FieldByIndex.
	Index []int
	// Type is the field's type.
	Type reflect.Type
	// Tag is the field's struct tag.
	Tag reflect.StructTag
	// Embedded reports whether the field was promoted from an
	// embedded struct.
	Embedded bool
}

var fieldCache syncmap.Map[reflect.Type, []Field]

// Fields returns the exported fields of t, with fields of embedded
// structs flattened in. Shallower fields shadow deeper ones with the
// same name; ambiguous same-depth names are dropped, matching the
// promotion rules of the language. Pointer types are dereferenced.
// Returns nil for non-struct types.
//
// The result is computed once per type and cached; callers must not
// mutate it.
func Fields(t reflect.Type) []Field {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached
	}
	fields := flattenFields(t)
	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual
}

// FieldByName returns the flattened field of t named name.
func FieldByName(t reflect.Type, name string) (Field, bool) {
	for _, f := range Fields(t) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// flatField pairs a candidate with its depth during the breadth-first
// walk over embedded structs.
type flatField struct {
	field Field
	depth int
}

func flattenFields(t reflect.Type) []Field {
	// Breadth-first, one embedding depth at a time, so shallower fields
	// are seen before the deeper fields they shadow. A type reached
	// through two paths at the same depth makes every field it promotes
	// ambiguous, so multiplicity is tracked per level rather than with
	// a plain visited set.
	type level struct {
		typ   reflect.Type
		index []int
		dup   bool
	}
	current := []level{{typ: t}}
	visited := map[reflect.Type]bool{}

	byName := map[string]flatField{}
	ambiguous := map[string]bool{}
	var order []string

	for depth := 0; len(current) > 0; depth++ {
		counts := map[reflect.Type]int{}
		for _, lv := range current {
			if !visited[lv.typ] {
				counts[lv.typ]++
			}
		}

		var next []level
		processed := map[reflect.Type]bool{}
		for _, lv := range current {
			if visited[lv.typ] || processed[lv.typ] {
				continue
			}
			processed[lv.typ] = true
			dup := lv.dup || counts[lv.typ] > 1

			for i := 0; i < lv.typ.NumField(); i++ {
				sf := lv.typ.Field(i)
				index := append(append([]int(nil), lv.index...), i)

				if sf.Anonymous {
					et := sf.Type
					if et.Kind() == reflect.Pointer {
						et = et.Elem()
					}
					if et.Kind() == reflect.Struct {
						next = append(next, level{typ: et, index: index, dup: dup})
						if !sf.IsExported() {
							continue
						}
						// An exported embedded struct is both a field
						// itself and a source of promoted fields.
					}
				}
				if !sf.IsExported() {
					continue
				}

				existing, seen := byName[sf.Name]
				switch {
				case !seen:
					byName[sf.Name] = flatField{
						field: Field{
							Name:     sf.Name,
							Index:    index,
							Type:     sf.Type,
							Tag:      sf.Tag,
							Embedded: depth > 0,
						},
						depth: depth,
					}
					order = append(order, sf.Name)
					if dup {
						// Reachable through more than one path, so the
						// language would not promote it.
						ambiguous[sf.Name] = true
					}
				case existing.depth == depth:
					ambiguous[sf.Name] = true
				default:
					// Shallower field already won.
				}
			}
		}
		for typ := range processed {
			visited[typ] = true
		}
		current = next
	}

	fields := make([]Field, 0, len(order))
	for _, name := range order {
		if ambiguous[name] {
			continue
		}
		fields = append(fields, byName[name].field)
	}
	return fields
}
