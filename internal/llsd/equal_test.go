package llsd

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sampleValues() []Value {
	when := time.Date(2009, 6, 1, 12, 30, 0, 0, time.UTC)
	return []Value{
		Undefined{},
		Boolean(true),
		Boolean(false),
		Integer(0),
		Integer(-42),
		Real(3.5),
		String(""),
		String("hello"),
		UUID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
		Date(when),
		URI("http://secondlife.com"),
		Binary{0xde, 0xad},
		Array{},
		Array{Integer(1), Array{String("x")}},
		NewMap(),
		MapOf("a", Integer(1), "b", MapOf("c", Array{Real(1.5)})),
	}
}

func TestEqual_Reflexive(t *testing.T) {
	for _, v := range sampleValues() {
		assert.True(t, Equal(v, v), "%s value should equal itself", v.Type())
		assert.True(t, Equal(v, Clone(v)), "%s value should equal its clone", v.Type())
	}
}

func TestEqual_DistinctSamples(t *testing.T) {
	values := sampleValues()
	for i, a := range values {
		for j, b := range values {
			if i == j {
				continue
			}
			assert.False(t, Equal(a, b), "sample %d (%s) vs %d (%s)", i, a.Type(), j, b.Type())
		}
	}
}

func TestEqual_NoCoercion(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
	}{
		{"string vs integer", String("1"), Integer(1)},
		{"integer vs real", Integer(1), Real(1)},
		{"boolean vs integer", Boolean(true), Integer(1)},
		{"string vs uri", String("http://a"), URI("http://a")},
		{"string vs uuid", String(uuid.Nil.String()), UUID(uuid.Nil)},
		{"undefined vs empty string", Undefined{}, String("")},
		{"empty array vs empty map", Array{}, NewMap()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Equal(tt.a, tt.b))
			assert.False(t, Equal(tt.b, tt.a))
		})
	}
}

func TestEqual_ArrayOrderMatters(t *testing.T) {
	assert.False(t, Equal(Array{Integer(1), Integer(2)}, Array{Integer(2), Integer(1)}))
	assert.False(t, Equal(Array{Integer(1)}, Array{Integer(1), Integer(1)}))
	assert.True(t, Equal(Array{Integer(1), Integer(2)}, Array{Integer(1), Integer(2)}))
}

func TestEqual_MapOrderIgnored(t *testing.T) {
	a := MapOf("x", Integer(1), "y", MapOf("p", String("q"), "r", Boolean(true)))
	b := MapOf("y", MapOf("r", Boolean(true), "p", String("q")), "x", Integer(1))
	assert.True(t, Equal(a, b))

	b.Set("z", Undefined{})
	assert.False(t, Equal(a, b), "extra key on one side")
	assert.False(t, Equal(b, a), "extra key on other side")
}

func TestEqual_MapSameSizeDifferentKeys(t *testing.T) {
	assert.False(t, Equal(MapOf("a", Integer(1)), MapOf("b", Integer(1))))
}

func TestEqual_RealsAreExact(t *testing.T) {
	a, b := 0.1, 0.2
	assert.False(t, Equal(Real(a+b), Real(0.3)))
	assert.True(t, Equal(Real(2), Real(2.0)))
	assert.False(t, Equal(Real(math.NaN()), Real(math.NaN())))
}

func TestEqual_DatesCompareInstants(t *testing.T) {
	utc := time.Date(2010, 1, 2, 3, 4, 5, 0, time.UTC)
	local := utc.In(time.FixedZone("PST", -8*3600))
	assert.True(t, Equal(Date(utc), Date(local)))
}

func TestEqual_NilIsUndefined(t *testing.T) {
	assert.True(t, Equal(nil, Undefined{}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, Integer(0)))
}
