package llsd

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAsString(t *testing.T) {
	when := time.Date(2011, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		in   Value
		want string
	}{
		{Undefined{}, ""},
		{Boolean(true), "true"},
		{Boolean(false), ""},
		{Integer(-7), "-7"},
		{Real(2.5), "2.5"},
		{String("s"), "s"},
		{UUID(uuid.Nil), "00000000-0000-0000-0000-000000000000"},
		{Date(when), "2011-03-04T05:06:07Z"},
		{URI("http://x"), "http://x"},
		{Binary{1}, ""},
		{Array{String("a")}, ""},
		{MapOf("a", String("b")), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AsString(tt.in), "AsString(%s)", TypeOf(tt.in))
	}
}

func TestAsInteger(t *testing.T) {
	assert.Equal(t, int32(1), AsInteger(Boolean(true)))
	assert.Equal(t, int32(-3), AsInteger(Real(-3.9)))
	assert.Equal(t, int32(12), AsInteger(String("12.7")))
	assert.Equal(t, int32(0), AsInteger(String("nope")))
	assert.Equal(t, int32(2147483647), AsInteger(Real(1e20)))
	assert.Equal(t, int32(0), AsInteger(Array{Integer(1)}))
}

func TestAsReal(t *testing.T) {
	assert.Equal(t, 4.0, AsReal(Integer(4)))
	assert.Equal(t, 0.5, AsReal(String(" 0.5 ")))
	assert.Equal(t, 10.0, AsReal(Date(time.Unix(10, 0))))
}

func TestAsBoolean(t *testing.T) {
	assert.True(t, AsBoolean(Integer(2)))
	assert.False(t, AsBoolean(Real(0)))
	assert.True(t, AsBoolean(String("false")), "non-empty strings are true")
	assert.False(t, AsBoolean(Undefined{}))
}

func TestAsUUIDAndDate(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, AsUUID(UUID(id)))
	assert.Equal(t, id, AsUUID(String(id.String())))
	assert.Equal(t, uuid.Nil, AsUUID(String("garbage")))

	when := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, when.Equal(AsDate(String("2020-01-01T00:00:00Z"))))
	assert.True(t, when.Equal(AsDate(Integer(int32(when.Unix())))))
	assert.True(t, AsDate(Boolean(true)).IsZero())
}
