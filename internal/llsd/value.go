// Package llsd provides the structured-data value tree: a closed tagged union
// over scalars, arrays and ordered maps, together with the template merge and
// deep equality operations defined over it.
package llsd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies the variant held by a Value.
type Type int

// Value variants, in LLSD order.
const (
	TypeUndefined Type = iota
	TypeBoolean
	TypeInteger
	TypeReal
	TypeString
	TypeUUID
	TypeDate
	TypeURI
	TypeBinary
	TypeMap
	TypeArray
)

var typeNames = []string{
	TypeUndefined: "undefined",
	TypeBoolean:   "boolean",
	TypeInteger:   "integer",
	TypeReal:      "real",
	TypeString:    "string",
	TypeUUID:      "uuid",
	TypeDate:      "date",
	TypeURI:       "uri",
	TypeBinary:    "binary",
	TypeMap:       "map",
	TypeArray:     "array",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// Value is a node of the tree. The set of implementations is closed: only the
// types declared in this package satisfy it.
type Value interface {
	// Type reports the variant tag.
	Type() Type

	llsd()
}

// Undefined is the empty value.
type Undefined struct{}

// Boolean is a true/false value.
type Boolean bool

// Integer is a signed 32-bit integer.
type Integer int32

// Real is a 64-bit floating point number.
type Real float64

// String is a UTF-8 string.
type String string

// UUID is a 128-bit identifier.
type UUID uuid.UUID

// Date is a point in time.
type Date time.Time

// URI is a string holding a URI. It is distinct from String for equality.
type URI string

// Binary is an opaque byte blob.
type Binary []byte

// Array is an ordered sequence of values.
type Array []Value

func (Undefined) Type() Type { return TypeUndefined }
func (Boolean) Type() Type   { return TypeBoolean }
func (Integer) Type() Type   { return TypeInteger }
func (Real) Type() Type      { return TypeReal }
func (String) Type() Type    { return TypeString }
func (UUID) Type() Type      { return TypeUUID }
func (Date) Type() Type      { return TypeDate }
func (URI) Type() Type       { return TypeURI }
func (Binary) Type() Type    { return TypeBinary }
func (Array) Type() Type     { return TypeArray }

func (Undefined) llsd() {}
func (Boolean) llsd()   {}
func (Integer) llsd()   {}
func (Real) llsd()      {}
func (String) llsd()    {}
func (UUID) llsd()      {}
func (Date) llsd()      {}
func (URI) llsd()       {}
func (Binary) llsd()    {}
func (Array) llsd()     {}

// TypeOf returns the tag of v, treating a nil Value as undefined.
func TypeOf(v Value) Type {
	if v == nil {
		return TypeUndefined
	}
	return v.Type()
}

// IsDefined reports whether v holds anything other than undefined.
func IsDefined(v Value) bool {
	return TypeOf(v) != TypeUndefined
}

// orUndefined replaces a nil Value with Undefined.
func orUndefined(v Value) Value {
	if v == nil {
		return Undefined{}
	}
	return v
}

// Time returns d as a time.Time.
func (d Date) Time() time.Time { return time.Time(d) }

// String renders the UUID in canonical hyphenated form.
func (u UUID) String() string { return uuid.UUID(u).String() }

// NewDate wraps t as a Date value in UTC.
func NewDate(t time.Time) Date { return Date(t.UTC()) }

// EmptyArray returns an array with no elements.
func EmptyArray() Array { return Array{} }

// Clone returns a deep copy of v. Scalars are returned as is except Binary,
// whose bytes are copied.
func Clone(v Value) Value {
	switch x := orUndefined(v).(type) {
	case Binary:
		return append(Binary(nil), x...)
	case Array:
		out := make(Array, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case *Map:
		return x.Clone()
	default:
		return x
	}
}

// Size returns the number of children of an array or map, and 0 otherwise.
func Size(v Value) int {
	switch x := orUndefined(v).(type) {
	case Array:
		return len(x)
	case *Map:
		return x.Len()
	default:
		return 0
	}
}
