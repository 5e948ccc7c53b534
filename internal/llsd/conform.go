package llsd

import (
	"fmt"
	"strconv"
)

// MismatchError describes the first place where a tree does not have the shape
// its template requires.
type MismatchError struct {
	Path string
	Want Type
	Got  Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", DisplayPath(e.Path), e.Want, e.Got)
}

// Conform merges test against template and returns a tree with the template's
// shape.
//
//   - An undefined test takes the template wholesale.
//   - Differing tags fail.
//   - Arrays are merged position by position; template elements beyond the
//     end of test are appended as defaults and extra test elements are dropped.
//   - Maps are merged key by key in template order; keys missing from test
//     take the template's value and keys only in test are dropped.
//   - Matching scalars keep the test's value.
//
// Defaults copied from the template are deep copies. On failure the result is
// Undefined and ok is false; nothing partial is returned.
func Conform(test, template Value) (result Value, ok bool) {
	result, err := conform(test, template, "")
	return result, err == nil
}

// ConformError is Conform reporting where the first mismatch occurred.
func ConformError(test, template Value) (Value, error) {
	result, err := conform(test, template, "")
	if err != nil {
		return result, err
	}
	return result, nil
}

func conform(test, template Value, path string) (Value, *MismatchError) {
	test, template = orUndefined(test), orUndefined(template)

	if test.Type() == TypeUndefined && template.Type() != TypeUndefined {
		return Clone(template), nil
	}
	if test.Type() != template.Type() {
		return Undefined{}, &MismatchError{Path: path, Want: template.Type(), Got: test.Type()}
	}

	switch t := test.(type) {
	case Array:
		tmpl := template.(Array)
		out := make(Array, 0, len(tmpl))
		i := 0
		for ; i < len(tmpl) && i < len(t); i++ {
			v, err := conform(t[i], tmpl[i], PathIndex(path, i))
			if err != nil {
				return Undefined{}, err
			}
			out = append(out, v)
		}
		for ; i < len(tmpl); i++ {
			out = append(out, Clone(tmpl[i]))
		}
		return out, nil

	case *Map:
		tmpl := template.(*Map)
		out := NewMap()
		var failure *MismatchError
		tmpl.Range(func(key string, tv Value) bool {
			got, ok := t.Get(key)
			if !ok {
				out.Set(key, Clone(tv))
				return true
			}
			v, err := conform(got, tv, PathKey(path, key))
			if err != nil {
				failure = err
				return false
			}
			out.Set(key, v)
			return true
		})
		if failure != nil {
			return Undefined{}, failure
		}
		return out, nil

	default:
		return test, nil
	}
}

// PathKey extends a path with a map key.
func PathKey(path, key string) string {
	return path + "." + key
}

// PathIndex extends a path with an array index.
func PathIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// DisplayPath renders a path for messages, naming the root explicitly.
func DisplayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return "<root>" + path
}
