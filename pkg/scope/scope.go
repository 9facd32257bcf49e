// Package scope provides ordered name/value mappings and the read-time field
// projection that lets a formula address a collection of rows as if it were a
// single row.
package scope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Scope is an insertion-ordered mapping from name to value.
// It is used for rows under construction, evaluated rows, and the mapping of
// sheet names to their rows.
type Scope struct {
	keys   []string
	values map[string]any
}

// New creates an empty Scope.
func New() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Of creates a Scope holding a single entry.
func Of(name string, value any) *Scope {
	s := New()
	s.Set(name, value)
	return s
}

// Get returns the value stored under name.
func (s *Scope) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[name]
	return value, ok
}

// Field implements Fielder.
func (s *Scope) Field(name string) (any, bool) {
	return s.Get(name)
}

// Set stores value under name. Re-setting a name keeps its original position.
func (s *Scope) Set(name string, value any) {
	if _, exists := s.values[name]; !exists {
		s.keys = append(s.keys, name)
	}
	s.values[name] = value
}

// Keys returns the names in insertion order.
func (s *Scope) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len returns the number of entries.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Each calls fn for every entry in insertion order.
func (s *Scope) Each(fn func(name string, value any)) {
	if s == nil {
		return
	}
	for _, key := range s.keys {
		fn(key, s.values[key])
	}
}

// Clone returns a shallow copy. Values are shared.
func (s *Scope) Clone() *Scope {
	clone := &Scope{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]any, len(s.values)),
	}
	copy(clone.keys, s.keys)
	for k, v := range s.values {
		clone.values[k] = v
	}
	return clone
}

// MarshalJSON encodes the scope as a JSON object preserving key order.
func (s *Scope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range s.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", key, err)
		}
		valueJSON, err := json.Marshal(s.values[key])
		if err != nil {
			return nil, fmt.Errorf("encode value of %q: %w", key, err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
