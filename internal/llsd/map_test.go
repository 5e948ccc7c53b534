package llsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_InsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("zeta", Integer(1))
	m.Set("alpha", Integer(2))
	m.Set("mid", Integer(3))
	m.Set("zeta", Integer(4))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	assert.Equal(t, Integer(4), m.At("zeta"))
	assert.Equal(t, 3, m.Len())
}

func TestMap_Delete(t *testing.T) {
	m := MapOf("a", Integer(1), "b", Integer(2), "c", Integer(3))
	m.Delete("b")
	m.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
}

func TestMap_GetMissing(t *testing.T) {
	m := NewMap()
	v, ok := m.Get("nothing")
	assert.False(t, ok)
	assert.Equal(t, Undefined{}, v)

	var nilMap *Map
	assert.False(t, nilMap.Has("x"))
	assert.Equal(t, 0, nilMap.Len())
}

func TestMap_SetNilStoresUndefined(t *testing.T) {
	m := NewMap()
	m.Set("k", nil)
	v, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, Undefined{}, v)
}

func TestMap_ZeroValue(t *testing.T) {
	var m Map
	m.Set("a", Integer(1))
	m.Set("b", Integer(2))
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.True(t, Equal(MapOf("a", Integer(1), "b", Integer(2)), &m))
}

func TestMap_RangeStops(t *testing.T) {
	m := MapOf("a", Integer(1), "b", Integer(2), "c", Integer(3))
	var seen []string
	m.Range(func(key string, _ Value) bool {
		seen = append(seen, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMapOf_Panics(t *testing.T) {
	assert.Panics(t, func() { MapOf("a") })
	assert.Panics(t, func() { MapOf(1, Integer(1)) })
	assert.Panics(t, func() { MapOf("a", 1) })
}

func TestClone_IsDeep(t *testing.T) {
	orig := MapOf("list", Array{Binary{1, 2}}, "m", MapOf("k", String("v")))
	cp := Clone(orig).(*Map)

	cp.At("list").(Array)[0].(Binary)[0] = 9
	cp.At("m").(*Map).Set("k", String("changed"))

	assert.Equal(t, Binary{1, 2}, orig.At("list").(Array)[0])
	assert.Equal(t, String("v"), orig.At("m").(*Map).At("k"))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "uuid", TypeUUID.String())
	assert.Equal(t, "array", TypeArray.String())
	assert.Equal(t, "type(99)", Type(99).String())
}
