// Package document provides the generic YAML value model used by the editor.
//
// A decoded document is built from *Map (mappings that keep their key order),
// []any (sequences) and plain scalars (string, int, float64, bool, nil).
package document

import (
	"fmt"
	"reflect"
	"sort"
)

// Map is a YAML mapping that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating key/value arguments.
// It panics when a key is not a string, which only happens on programmer error.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("document.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("document.MapOf: key %v is not a string", kv[i]))
		}
		m.Set(key, kv[i+1])
	}
	return m
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in order. The returned slice is a copy.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil when absent.
func (m *Map) Value(key string) any {
	v, _ := m.Get(key)
	return v
}

// GetString returns the value under key when it is a string.
func (m *Map) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetMap returns the value under key when it is a mapping.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	mm, ok := v.(*Map)
	return mm, ok
}

// GetSlice returns the value under key when it is a sequence.
func (m *Map) GetSlice(key string) ([]any, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// Set stores value under key. New keys are appended, existing keys keep their position.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key if present.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for every entry in order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	if m == nil {
		return NewMap()
	}
	out := &Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]any, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = Clone(v)
	}
	return out
}

// Without returns a deep copy of the map minus the given keys.
func (m *Map) Without(keys ...string) *Map {
	out := m.Clone()
	for _, k := range keys {
		out.Delete(k)
	}
	return out
}

// Merge copies every entry of other into m, overwriting existing keys.
func (m *Map) Merge(other *Map) {
	other.Range(func(k string, v any) bool {
		m.Set(k, Clone(v))
		return true
	})
}

// ToPlain converts the map into nested map[string]any / []any values.
func (m *Map) ToPlain() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v any) bool {
		out[k] = ToPlain(v)
		return true
	})
	return out
}

// Clone deep-copies a generic value.
func Clone(v any) any {
	switch val := v.(type) {
	case *Map:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	case map[string]any:
		return FromPlain(val)
	default:
		return v
	}
}

// ToPlain converts a generic value into plain Go maps and slices.
func ToPlain(v any) any {
	switch val := v.(type) {
	case *Map:
		return val.ToPlain()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToPlain(item)
		}
		return out
	default:
		return v
	}
}

// FromPlain converts plain Go maps into ordered Maps. Keys of plain maps are
// sorted because their original order is unknown.
func FromPlain(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromPlain(val[k]))
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = FromPlain(item)
		}
		return out
	case *Map:
		return val.Clone()
	default:
		return v
	}
}

// Equal compares two generic values. Mapping key order is ignored and numbers
// compare by value regardless of their Go type.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		equal := true
		av.Range(func(k string, v any) bool {
			other, ok := bv.Get(k)
			if !ok || !Equal(v, other) {
				equal = false
			}
			return equal
		})
		return equal
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// ToInt converts numeric scalars (and numeric strings) to int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil && fmt.Sprint(i) == n {
			return i, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Scalar renders a scalar for display; mappings and sequences render as their
// compact Go form.
func Scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *Map, []any:
		return fmt.Sprint(ToPlain(val))
	default:
		return fmt.Sprint(val)
	}
}
