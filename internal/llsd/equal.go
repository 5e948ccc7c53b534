package llsd

import (
	"bytes"
	"fmt"
	"time"
)

// Equal reports whether a and b hold the same tag and the same payload. No
// conversions are performed: String("1") and Integer(1) are unequal. Reals are
// compared with ==, so this is only meaningful where identical representations
// are expected. Map key order is ignored; array order is not.
func Equal(a, b Value) bool {
	a, b = orUndefined(a), orUndefined(b)
	if a.Type() != b.Type() {
		return false
	}

	switch x := a.(type) {
	case Undefined:
		return true
	case Boolean:
		return x == b.(Boolean)
	case Integer:
		return x == b.(Integer)
	case Real:
		return x == b.(Real)
	case String:
		return x == b.(String)
	case UUID:
		return x == b.(UUID)
	case Date:
		return time.Time(x).Equal(time.Time(b.(Date)))
	case URI:
		return x == b.(URI)
	case Binary:
		return bytes.Equal(x, b.(Binary))
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Map:
		y := b.(*Map)
		if x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Range(func(key string, xv Value) bool {
			yv, ok := y.Get(key)
			if !ok || !Equal(xv, yv) {
				equal = false
			}
			return equal
		})
		return equal
	default:
		// Every implementation of Value is declared in this package and
		// handled above.
		panic(fmt.Sprintf("llsd.Equal: unhandled value type %T", a))
	}
}
