package llsd

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
)

var (
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
)

// DecodeError reports a value that cannot be stored in the Go destination.
type DecodeError struct {
	Path   string
	Target reflect.Type
	Got    Type
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: cannot decode %s into %s: %s", DisplayPath(e.Path), e.Got, e.Target, e.Reason)
	}
	return fmt.Sprintf("%s: cannot decode %s into %s", DisplayPath(e.Path), e.Got, e.Target)
}

// UnsupportedTypeError is returned by FromStruct for Go types with no tree
// representation, such as channels and functions.
type UnsupportedTypeError struct {
	Path string
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported type %s", DisplayPath(e.Path), e.Type)
}

// FieldName returns the map key used for a struct field: the name in its
// `llsd` tag, or the field name in snake_case.
func FieldName(f reflect.StructField) (name string, omitempty bool, skip bool) {
	tag := f.Tag.Get("llsd")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	if name == "" {
		name = strcase.ToSnake(f.Name)
	}
	return name, omitempty, false
}

// FromStruct converts a Go value into a tree. Structs become maps in field
// order, Go maps become maps in sorted key order, []byte becomes Binary,
// time.Time becomes Date and uuid.UUID becomes UUID. Integers that do not fit
// in 32 bits become Real.
func FromStruct(in any) (Value, error) {
	if in == nil {
		return Undefined{}, nil
	}
	return fromReflect(reflect.ValueOf(in), "")
}

func fromReflect(rv reflect.Value, path string) (Value, error) {
	if !rv.IsValid() {
		return Undefined{}, nil
	}
	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return Undefined{}, nil
	}
	if rv.Type().Implements(valueType) && rv.CanInterface() {
		return rv.Interface().(Value), nil
	}

	switch rv.Type() {
	case timeType:
		return NewDate(rv.Interface().(time.Time)), nil
	case uuidType:
		return UUID(rv.Interface().(uuid.UUID)), nil
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return fromReflect(rv.Elem(), path)
	case reflect.Bool:
		return Boolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Real(n), nil
		}
		return Integer(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return Real(n), nil
		}
		return Integer(n), nil
	case reflect.Float32, reflect.Float64:
		return Real(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make(Binary, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return b, nil
		}
		out := make(Array, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := fromReflect(rv.Index(i), PathIndex(path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &UnsupportedTypeError{Path: path, Type: rv.Type()}
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			v, err := fromReflect(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())), PathKey(path, k))
			if err != nil {
				return nil, err
			}
			out.Set(k, v)
		}
		return out, nil
	case reflect.Struct:
		out := NewMap()
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, omitempty, skip := FieldName(f)
			if skip {
				continue
			}
			fv := rv.Field(i)
			if omitempty && isEmpty(fv) {
				continue
			}
			v, err := fromReflect(fv, PathKey(path, name))
			if err != nil {
				return nil, err
			}
			out.Set(name, v)
		}
		return out, nil
	default:
		return nil, &UnsupportedTypeError{Path: path, Type: rv.Type()}
	}
}

func isEmpty(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.String, reflect.Array:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

// Decode stores v into the Go value pointed to by out, using the same naming
// rules as FromStruct. Undefined leaves the destination untouched, and map
// keys with no matching field are ignored.
func Decode(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("llsd: Decode requires a non-nil pointer, got %T", out)
	}
	return decodeInto(orUndefined(v), rv.Elem(), "")
}

func decodeInto(v Value, rv reflect.Value, path string) error {
	if rv.Type() == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}
	if v.Type() == TypeUndefined {
		return nil
	}
	mismatch := func() error {
		return &DecodeError{Path: path, Target: rv.Type(), Got: v.Type()}
	}

	switch rv.Type() {
	case timeType:
		d, ok := v.(Date)
		if !ok {
			return mismatch()
		}
		rv.Set(reflect.ValueOf(time.Time(d)))
		return nil
	case uuidType:
		switch x := v.(type) {
		case UUID:
			rv.Set(reflect.ValueOf(uuid.UUID(x)))
		case String:
			id, err := uuid.Parse(string(x))
			if err != nil {
				return &DecodeError{Path: path, Target: rv.Type(), Got: v.Type(), Reason: err.Error()}
			}
			rv.Set(reflect.ValueOf(id))
		default:
			return mismatch()
		}
		return nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeInto(v, rv.Elem(), path)
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return mismatch()
		}
		rv.Set(reflect.ValueOf(v))
		return nil
	case reflect.Bool:
		b, ok := v.(Boolean)
		if !ok {
			return mismatch()
		}
		rv.SetBool(bool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(Integer)
		if !ok {
			return mismatch()
		}
		if rv.OverflowInt(int64(n)) {
			return &DecodeError{Path: path, Target: rv.Type(), Got: v.Type(), Reason: "value out of range"}
		}
		rv.SetInt(int64(n))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(Integer)
		if !ok {
			return mismatch()
		}
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return &DecodeError{Path: path, Target: rv.Type(), Got: v.Type(), Reason: "value out of range"}
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		switch x := v.(type) {
		case Real:
			rv.SetFloat(float64(x))
		case Integer:
			rv.SetFloat(float64(x))
		default:
			return mismatch()
		}
		return nil
	case reflect.String:
		switch x := v.(type) {
		case String:
			rv.SetString(string(x))
		case URI:
			rv.SetString(string(x))
		default:
			return mismatch()
		}
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b, ok := v.(Binary)
			if !ok {
				return mismatch()
			}
			rv.SetBytes(append([]byte(nil), b...))
			return nil
		}
		arr, ok := v.(Array)
		if !ok {
			return mismatch()
		}
		out := reflect.MakeSlice(rv.Type(), len(arr), len(arr))
		for i, e := range arr {
			if err := decodeInto(orUndefined(e), out.Index(i), PathIndex(path, i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil
	case reflect.Map:
		m, ok := v.(*Map)
		if !ok || rv.Type().Key().Kind() != reflect.String {
			return mismatch()
		}
		out := reflect.MakeMapWithSize(rv.Type(), m.Len())
		var err error
		m.Range(func(key string, e Value) bool {
			elem := reflect.New(rv.Type().Elem()).Elem()
			if err = decodeInto(e, elem, PathKey(path, key)); err != nil {
				return false
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), elem)
			return true
		})
		if err != nil {
			return err
		}
		rv.Set(out)
		return nil
	case reflect.Struct:
		m, ok := v.(*Map)
		if !ok {
			return mismatch()
		}
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, _, skip := FieldName(f)
			if skip {
				continue
			}
			e, ok := m.Get(name)
			if !ok {
				continue
			}
			if err := decodeInto(e, rv.Field(i), PathKey(path, name)); err != nil {
				return err
			}
		}
		return nil
	default:
		return mismatch()
	}
}
