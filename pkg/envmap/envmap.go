// SPDX-License-Identifier: MPL-2.0

// Package envmap provides an insertion-ordered string map.
//
// Package environment blocks are order-sensitive (a later key may reference an
// earlier one through ${VAR}), so they cannot be held in a plain Go map. The same
// type carries the composed environment and the command table so that rendered
// output is deterministic.
package envmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered mapping of string keys to string values.
// Re-setting an existing key replaces its value but keeps its position.
//
// A nil *Map behaves as an empty, read-only map.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// FromPairs builds a Map from alternating key/value arguments.
// It panics when given an odd number of arguments.
func FromPairs(kv ...string) *Map {
	if len(kv)%2 != 0 {
		panic("envmap.FromPairs: odd number of arguments")
	}
	m := New()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set assigns value to key.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *Map) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates over key/value pairs in insertion order.
func (m *Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns an independent copy of m. Cloning nil yields an empty Map.
func (m *Map) Clone() *Map {
	c := New()
	if m == nil {
		return c
	}
	c.keys = slices.Clone(m.keys)
	maps.Copy(c.values, m.values)
	return c
}

// Overlay sets every pair of other onto m, in other's order.
func (m *Map) Overlay(other *Map) {
	for k, v := range other.All() {
		m.Set(k, v)
	}
}

// ToMap returns the contents as a plain map.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes m as a JSON object with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range m.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping of scalars, preserving document order.
// A null node decodes to an empty Map.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	*m = Map{values: make(map[string]string)}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of names to strings", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping key must be a string", key.Line)
		}
		if m.Has(key.Value) {
			return fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
		}
		switch {
		case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
			m.Set(key.Value, "")
		case value.Kind == yaml.ScalarNode:
			m.Set(key.Value, value.Value)
		default:
			return fmt.Errorf("line %d: value of %q must be a string", value.Line, key.Value)
		}
	}
	return nil
}
