// Package keyvalues reads Valve KeyValues text, the nested key/value format
// behind .vmt materials, .res layouts and BSP entity lumps.
//
// Every value is held as a string. Get and GetOrDefault convert on each call.
package keyvalues

import (
	"sort"
)

// KeyValues is one node of a KeyValues tree. Keys are unique per node and the
// last assignment wins. Each subkey node is owned by exactly one parent.
type KeyValues struct {
	values  map[string]string
	subkeys map[string]*KeyValues
}

// New returns an empty tree
func New() *KeyValues {
	return &KeyValues{
		values:  make(map[string]string),
		subkeys: make(map[string]*KeyValues),
	}
}

// FromPair returns a tree holding a single value
func FromPair(key, value string) *KeyValues {
	kv := New()
	kv.AddValue(key, value)
	return kv
}

// AddValue sets key to value, replacing any previous value
func (kv *KeyValues) AddValue(key, value string) {
	if kv.values == nil {
		kv.values = make(map[string]string)
	}
	kv.values[key] = value
}

// AddSubkey stores a deep copy of subkey under key, replacing any previous
// subkey. Later changes to subkey do not affect kv.
func (kv *KeyValues) AddSubkey(key string, subkey *KeyValues) {
	kv.setSubkey(key, subkey.Clone())
}

func (kv *KeyValues) setSubkey(key string, subkey *KeyValues) {
	if kv.subkeys == nil {
		kv.subkeys = make(map[string]*KeyValues)
	}
	kv.subkeys[key] = subkey
}

// Value returns the raw string stored under key
func (kv *KeyValues) Value(key string) (string, bool) {
	if kv == nil {
		return "", false
	}
	v, ok := kv.values[key]
	return v, ok
}

// Subkey returns the direct child stored under key. It does not search
// deeper levels.
func (kv *KeyValues) Subkey(key string) (*KeyValues, bool) {
	if kv == nil {
		return nil, false
	}
	sub, ok := kv.subkeys[key]
	return sub, ok
}

// Keys returns the value keys in sorted order
func (kv *KeyValues) Keys() []string {
	if kv == nil {
		return nil
	}
	return sortedKeys(kv.values)
}

// SubkeyNames returns the subkey names in sorted order
func (kv *KeyValues) SubkeyNames() []string {
	if kv == nil {
		return nil
	}
	return sortedKeys(kv.subkeys)
}

// Len is the number of values plus the number of subkeys at this level
func (kv *KeyValues) Len() int {
	if kv == nil {
		return 0
	}
	return len(kv.values) + len(kv.subkeys)
}

// Clone returns a deep copy
func (kv *KeyValues) Clone() *KeyValues {
	out := New()
	if kv == nil {
		return out
	}
	for k, v := range kv.values {
		out.values[k] = v
	}
	for k, sub := range kv.subkeys {
		out.subkeys[k] = sub.Clone()
	}
	return out
}

// Equal reports whether both trees hold the same values and subkeys
func (kv *KeyValues) Equal(other *KeyValues) bool {
	if kv.Len() != other.Len() {
		return false
	}
	if kv == nil || other == nil {
		return true
	}

	if len(kv.values) != len(other.values) {
		return false
	}
	for k, v := range kv.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}

	for k, sub := range kv.subkeys {
		osub, ok := other.subkeys[k]
		if !ok || !sub.Equal(osub) {
			return false
		}
	}
	return true
}

// Walk visits kv and every descendant depth-first in sorted key order,
// parents before children. path holds the subkey names leading to node and is
// empty for the root. Names are kept apart because key names may contain any
// separator ("Resource/UI/HudHealth.res"). A non-nil error from fn stops the
// walk and is returned.
func (kv *KeyValues) Walk(fn func(path []string, node *KeyValues) error) error {
	return kv.walk(nil, fn)
}

func (kv *KeyValues) walk(path []string, fn func([]string, *KeyValues) error) error {
	if err := fn(path, kv); err != nil {
		return err
	}
	for _, name := range kv.SubkeyNames() {
		// full slice expression so siblings never share a backing array
		childPath := append(path[:len(path):len(path)], name)
		if err := kv.subkeys[name].walk(childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

// Lookup descends through subkeys by exact name, one level per element of
// path. An empty path returns kv itself.
func (kv *KeyValues) Lookup(path ...string) (*KeyValues, bool) {
	node := kv
	for _, name := range path {
		next, ok := node.Subkey(name)
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, node != nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
