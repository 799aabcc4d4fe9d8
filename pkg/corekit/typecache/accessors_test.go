package typecache

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetter(t *testing.T) {
	get, ok := Getter(reflect.TypeOf(person{}), "Name")
	require.True(t, ok)

	v, err := get(person{Name: "ada", Age: 36})
	require.NoError(t, err)
	assert.Equal(t, "ada", v)

	// The same closure accepts a pointer.
	v, err = get(&person{Name: "grace"})
	require.NoError(t, err)
	assert.Equal(t, "grace", v)
}

func TestGetter_PromotedField(t *testing.T) {
	get, ok := Getter(reflect.TypeOf(employee{}), "Age")
	require.True(t, ok)

	v, err := get(employee{person: person{Age: 41}})
	require.NoError(t, err)
	assert.Equal(t, 41, v)
}

func TestGetter_Errors(t *testing.T) {
	get, ok := Getter(reflect.TypeOf(person{}), "Name")
	require.True(t, ok)

	_, err := get(nil)
	assert.ErrorIs(t, err, ErrNilValue)

	_, err = get((*person)(nil))
	assert.ErrorIs(t, err, ErrNilValue)

	_, err = get(employee{})
	assert.Error(t, err, "wrong struct type is rejected")

	_, ok = Getter(reflect.TypeOf(person{}), "Nope")
	assert.False(t, ok)
	_, ok = Getter(reflect.TypeOf(42), "Nope")
	assert.False(t, ok)
}

func TestSetter(t *testing.T) {
	set, ok := Setter(reflect.TypeOf(person{}), "Age")
	require.True(t, ok)

	var p person
	require.NoError(t, set(&p, 30))
	assert.Equal(t, 30, p.Age)
}

func TestSetter_AllocatesEmbeddedPointer(t *testing.T) {
	set, ok := Setter(reflect.TypeOf(viaPointer{}), "ID")
	require.True(t, ok)

	var v viaPointer
	require.NoError(t, set(&v, "x-1"))
	require.NotNil(t, v.Base)
	assert.Equal(t, "x-1", v.ID)
}

func TestSetter_UnexportedEmbeddedPointer(t *testing.T) {
	set, ok := Setter(reflect.TypeOf(viaHiddenPointer{}), "Tag")
	require.True(t, ok, "the promoted field is still readable metadata")

	// reflect refuses writes through an unexported embedded field,
	// whether the pointer needs allocating or not.
	var nilAnchor viaHiddenPointer
	assert.ErrorIs(t, set(&nilAnchor, "x"), ErrUnexportedEmbed)

	populated := viaHiddenPointer{hiddenAnchor: &hiddenAnchor{}}
	assert.ErrorIs(t, set(&populated, "x"), ErrUnexportedEmbed)
}

func TestSetter_Errors(t *testing.T) {
	set, ok := Setter(reflect.TypeOf(person{}), "Age")
	require.True(t, ok)

	assert.ErrorIs(t, set(nil, 1), ErrNilValue)
	assert.ErrorIs(t, set((*person)(nil), 1), ErrNilValue)
	assert.ErrorIs(t, set(person{}, 1), ErrNotAddressable)

	err := set(&person{}, "not an int")
	assert.Error(t, err)

	var e employee
	assert.Error(t, set(&e, 1), "wrong struct type is rejected")
}

func TestSetter_NilZeroesField(t *testing.T) {
	type holder struct {
		Ref *person
	}
	set, ok := Setter(reflect.TypeOf(holder{}), "Ref")
	require.True(t, ok)

	h := holder{Ref: &person{}}
	require.NoError(t, set(&h, nil))
	assert.Nil(t, h.Ref)
}

func TestAccessors_Cached(t *testing.T) {
	g1, ok := Getter(reflect.TypeOf(person{}), "Name")
	require.True(t, ok)
	g2, ok := Getter(reflect.TypeOf(person{}), "Name")
	require.True(t, ok)

	v1 := reflect.ValueOf(g1).Pointer()
	v2 := reflect.ValueOf(g2).Pointer()
	assert.Equal(t, v1, v2, "repeated calls must return the cached closure")
}
