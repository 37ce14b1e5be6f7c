package keyvalues

import (
	"io"
	"strings"
	"unicode"
)

// WriteTo emits kv as KeyValues text: keys and values sorted by key, values
// before subkeys, one tab per nesting level. Strings are quoted unless they
// contain a double quote, in which case they are written as bare tokens.
// Parsing the output of any parsed tree gives back an equal tree.
func (kv *KeyValues) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	kv.write(&sb, 0)
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (kv *KeyValues) String() string {
	var sb strings.Builder
	kv.write(&sb, 0)
	return sb.String()
}

func (kv *KeyValues) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("\t", depth)

	for _, key := range kv.Keys() {
		sb.WriteString(indent)
		writeQuoted(sb, key)
		sb.WriteByte('\t')
		writeQuoted(sb, kv.values[key])
		sb.WriteByte('\n')
	}

	for _, name := range kv.SubkeyNames() {
		sb.WriteString(indent)
		writeQuoted(sb, name)
		sb.WriteByte('\n')
		sb.WriteString(indent)
		sb.WriteString("{\n")
		kv.subkeys[name].write(sb, depth+1)
		sb.WriteString(indent)
		sb.WriteString("}\n")
	}
}

// writeQuoted quotes s. A string holding '"' can only have come from a bare
// token, so it is written back bare; quoting it would end the string early.
func writeQuoted(sb *strings.Builder, s string) {
	if strings.ContainsRune(s, '"') && isBare(s) {
		sb.WriteString(s)
		return
	}
	sb.WriteByte('"')
	sb.WriteString(s)
	sb.WriteByte('"')
}

// isBare reports whether the lexer reads s back as a single bare token
func isBare(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '{', '}', '"':
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}

// MarshalYAML renders values and subkeys as a single mapping. A subkey hides
// a value stored under the same key.
func (kv *KeyValues) MarshalYAML() (interface{}, error) {
	out := make(map[string]interface{}, kv.Len())
	for _, key := range kv.Keys() {
		out[key] = kv.values[key]
	}
	for _, name := range kv.SubkeyNames() {
		out[name] = kv.subkeys[name]
	}
	return out, nil
}
