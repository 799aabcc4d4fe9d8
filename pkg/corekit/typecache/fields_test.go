package typecache

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
	zip  string
}

type person struct {
	Name string `json:"name"`
	Age  int
	home address
}

type employee struct {
	person
	Name   string // shadows person.Name
	Badge  int
	secret string
}

type Base struct {
	ID string
}

type viaPointer struct {
	*Base
	Label string
}

type hiddenAnchor struct {
	Tag string
}

type viaHiddenPointer struct {
	*hiddenAnchor
	Label string
}

func TestFields_Flat(t *testing.T) {
	fields := Fields(reflect.TypeOf(person{}))
	require.Len(t, fields, 2, "unexported fields are skipped")

	assert.Equal(t, "Name", fields[0].Name)
	assert.Equal(t, []int{0}, fields[0].Index)
	assert.Equal(t, reflect.TypeOf(""), fields[0].Type)
	assert.Equal(t, "name", fields[0].Tag.Get("json"))
	assert.False(t, fields[0].Embedded)

	assert.Equal(t, "Age", fields[1].Name)
}

func TestFields_EmbeddedShadowing(t *testing.T) {
	fields := Fields(reflect.TypeOf(employee{}))

	names := make(map[string]Field, len(fields))
	for _, f := range fields {
		names[f.Name] = f
	}

	// The outer Name wins over the promoted person.Name.
	require.Contains(t, names, "Name")
	assert.Equal(t, []int{1}, names["Name"].Index)
	assert.False(t, names["Name"].Embedded)

	// Promoted field keeps its full index path.
	require.Contains(t, names, "Age")
	assert.Equal(t, []int{0, 1}, names["Age"].Index)
	assert.True(t, names["Age"].Embedded)

	assert.NotContains(t, names, "secret")
}

func TestFields_EmbeddedPointer(t *testing.T) {
	f, ok := FieldByName(reflect.TypeOf(viaPointer{}), "ID")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, f.Index)
	assert.True(t, f.Embedded)
}

func TestFields_PointerAndNonStruct(t *testing.T) {
	ptr := Fields(reflect.TypeOf(&person{}))
	val := Fields(reflect.TypeOf(person{}))
	assert.Equal(t, val, ptr, "pointer types resolve to their element")

	assert.Nil(t, Fields(reflect.TypeOf(42)))
	assert.Nil(t, Fields(nil))
}

func TestFields_Cached(t *testing.T) {
	a := Fields(reflect.TypeOf(person{}))
	b := Fields(reflect.TypeOf(person{}))
	require.NotEmpty(t, a)
	assert.Same(t, &a[0], &b[0], "repeated calls must return the cached slice")
}

func TestFieldByName_Missing(t *testing.T) {
	_, ok := FieldByName(reflect.TypeOf(person{}), "Nope")
	assert.False(t, ok)
}

type greeter struct{}

func (greeter) Hello() string   { return "hi" }
func (*greeter) Poke() struct{} { return struct{}{} }

func TestMethodByName(t *testing.T) {
	m, ok := MethodByName(reflect.TypeOf(greeter{}), "Hello")
	require.True(t, ok)
	assert.Equal(t, "Hello", m.Name)

	// Pointer methods are only visible on the pointer type.
	_, ok = MethodByName(reflect.TypeOf(greeter{}), "Poke")
	assert.False(t, ok)
	_, ok = MethodByName(reflect.TypeOf(&greeter{}), "Poke")
	assert.True(t, ok)

	// Negative results are cached too; a second lookup must agree.
	_, ok = MethodByName(reflect.TypeOf(greeter{}), "Missing")
	assert.False(t, ok)
	_, ok = MethodByName(reflect.TypeOf(greeter{}), "Missing")
	assert.False(t, ok)

	_, ok = MethodByName(nil, "Hello")
	assert.False(t, ok)
}

type corner struct {
	Serial int
	Shared string
}

type leftSide struct{ corner }

type rightSide struct{ corner }

type diamond struct {
	leftSide
	rightSide
	Label string
}

func TestFields_DiamondEmbeddingIsAmbiguous(t *testing.T) {
	fields := Fields(reflect.TypeOf(diamond{}))

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Label"}, names,
		"fields reachable through two same-depth paths are not promoted")

	_, ok := FieldByName(reflect.TypeOf(diamond{}), "Serial")
	assert.False(t, ok)

	// The language agrees.
	_, ok = reflect.TypeOf(diamond{}).FieldByName("Serial")
	assert.False(t, ok)
}
