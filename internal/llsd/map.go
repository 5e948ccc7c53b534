package llsd

// Map is a string-keyed map that remembers insertion order. The zero value is
// an empty map.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// MapOf builds a map from alternating key/value pairs. It panics when pairs
// is odd-length or a key is not a string, so it is meant for literals.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("llsd.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("llsd.MapOf: key is not a string")
		}
		var val Value
		if pairs[i+1] != nil {
			if val, ok = pairs[i+1].(Value); !ok {
				panic("llsd.MapOf: value for " + key + " is not a Value")
			}
		}
		m.Set(key, val)
	}
	return m
}

func (*Map) Type() Type { return TypeMap }
func (*Map) llsd()      {}

// Set stores v under key. An existing key keeps its position.
func (m *Map) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = orUndefined(v)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Undefined{}, false
	}
	v, ok := m.values[key]
	if !ok {
		return Undefined{}, false
	}
	return v, true
}

// At returns the value under key, or Undefined when absent.
func (m *Map) At(key string) Value {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Delete removes key, keeping the order of the remaining keys.
func (m *Map) Delete(key string) {
	if !m.Has(key) {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := NewMap()
	m.Range(func(k string, v Value) bool {
		out.Set(k, Clone(v))
		return true
	})
	return out
}
