package sim

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed mapping that preserves the order keys were
// declared in. Region cycling and category selection both index by position,
// so declaration order is part of the configuration.
//
// Lookups of undeclared keys fail with ErrUnknownKey.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[V any]() OrderedMap[V] {
	return OrderedMap[V]{values: make(map[string]V)}
}

// Set appends key (or overwrites its value if already present).
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the keys in declaration order. The slice must not be modified.
func (m OrderedMap[V]) Keys() []string { return m.keys }

// Len returns the number of keys.
func (m OrderedMap[V]) Len() int { return len(m.keys) }

// At returns the i-th key and its value.
func (m OrderedMap[V]) At(i int) (string, V) {
	k := m.keys[i]
	return k, m.values[k]
}

// Has reports whether key was declared.
func (m OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Lookup returns the value for key, or ErrUnknownKey.
func (m OrderedMap[V]) Lookup(key string) (V, error) {
	v, ok := m.values[key]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w %q; declared: %v", ErrUnknownKey, key, m.keys)
	}
	return v, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping key order and rejecting
// duplicate keys and unknown fields inside values.
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := NewOrderedMap[V]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value
		if out.Has(key) {
			return fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
		}
		var v V
		if err := decodeStrict(valNode, &v); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out.Set(key, v)
	}
	*m = out
	return nil
}

// MarshalYAML emits the mapping in declaration order.
func (m OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range m.keys {
		var val yaml.Node
		if err := val.Encode(m.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &val)
	}
	return node, nil
}

// decodeStrict decodes node into out with unknown fields rejected.
// yaml.Node.Decode does not inherit KnownFields from the outer decoder.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}
