package gdbmi

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNull is the zero Value, holding nothing.
	KindNull Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindNumber holds a numeric token as uninterpreted text.
	KindNumber
	// KindString holds a string.
	KindString
	// KindList holds an ordered list of values.
	KindList
	// KindMap holds an ordered string-keyed map.
	KindMap
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is one node of an MI payload: null, boolean, number (kept as text),
// string, ordered list, or ordered map. Values produced by the parser are
// never mutated afterwards; only the outgoing serializer builds them up.
//
// Numeric tokens are retained as text. Coercion is the reader's choice, via
// Int or Uint.
type Value struct {
	kind    Kind
	boolean bool
	text    string
	list    []Value
	object  *Map
}

// NewBool returns a boolean Value.
func NewBool(v bool) Value {
	return Value{kind: KindBool, boolean: v}
}

// NewNumber returns a numeric Value holding the given token text.
func NewNumber(text string) Value {
	return Value{kind: KindNumber, text: text}
}

// NewInt returns a numeric Value for an integer.
func NewInt(v int) Value {
	return Value{kind: KindNumber, text: strconv.Itoa(v)}
}

// NewString returns a string Value.
func NewString(s string) Value {
	return Value{kind: KindString, text: s}
}

// NewList returns a list Value holding the given items in order.
func NewList(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Kind returns the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value holds nothing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload, or false for non-bool values.
func (v Value) Bool() bool { return v.kind == KindBool && v.boolean }

// Text returns the textual payload of a string or number value.
// Other kinds return "".
func (v Value) Text() string {
	if v.kind == KindString || v.kind == KindNumber {
		return v.text
	}
	return ""
}

// Int parses the textual payload as a decimal integer.
func (v Value) Int() (int, error) {
	if v.kind != KindString && v.kind != KindNumber {
		return 0, fmt.Errorf("gdbmi: cannot read %s value as int", v.kind)
	}
	return strconv.Atoi(v.text)
}

// Uint parses the textual payload as an unsigned integer. Base prefixes are
// honored, so gdb addresses like "0x5555555551a9" decode directly.
func (v Value) Uint() (uint64, error) {
	if v.kind != KindString && v.kind != KindNumber {
		return 0, fmt.Errorf("gdbmi: cannot read %s value as uint", v.kind)
	}
	return strconv.ParseUint(v.text, 0, 64)
}

// List returns the list payload, or nil for non-list values.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Map returns the map payload, or nil for non-map values.
func (v Value) Map() *Map {
	if v.kind != KindMap {
		return nil
	}
	return v.object
}

// String renders the value in MI wire syntax.
func (v Value) String() string {
	var b strings.Builder
	appendValue(&b, v)
	return b.String()
}

// Map is an ordered string-keyed collection of values. Keys are unique;
// setting an existing key replaces its value in place without disturbing the
// insertion order.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Value wraps the map as a Value node.
func (m *Map) Value() Value {
	return Value{kind: KindMap, object: m}
}

// Set stores a value under the given key.
func (m *Map) Set(key string, value Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetText returns the textual payload stored under key, or "" if the key is
// absent or not a string/number.
func (m *Map) GetText(key string) string {
	v, _ := m.Get(key)
	return v.Text()
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// String renders the map in MI wire syntax.
func (m *Map) String() string {
	return m.Value().String()
}

// appendValue renders a value in MI wire syntax. The same rendering is used
// for outgoing command arguments and for diagnostics, so a serialized payload
// re-parses to an equivalent structure.
func appendValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString(`""`)
	case KindBool:
		if v.boolean {
			b.WriteString(`"true"`)
		} else {
			b.WriteString(`"false"`)
		}
	case KindNumber:
		b.WriteString(v.text)
	case KindString:
		appendQuoted(b, v.text)
	case KindList:
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			appendValue(b, item)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, key := range v.object.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(key)
			b.WriteByte('=')
			appendValue(b, v.object.values[key])
		}
		b.WriteByte('}')
	}
}

// appendQuoted writes s as an MI quoted string literal, escaping quote,
// backslash, newline and tab.
func appendQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
