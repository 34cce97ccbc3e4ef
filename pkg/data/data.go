// Package data holds the tagged value union the renderer substitutes into
// templates: a value is null, text, a map of string keys to values, or an
// ordered list. Values are read-only once constructed; the renderer never
// mutates them, only its own view over them.
package data

import (
	"sort"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindMap
	KindList
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindString: "string",
	KindMap:    "map",
	KindList:   "list",
}

func (k Kind) String() string {
	return kindNames[k]
}

// falsey holds the sentinel scalar values that suppress sections. The engine
// represents boolean gating entirely through these strings rather than a
// native boolean type.
var falsey = map[string]struct{}{
	"false": {},
	"null":  {},
	"":      {},
}

// Value is the tagged union. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	m    map[string]Value
	list []Value
}

// Null returns the absent value.
func Null() Value {
	return Value{}
}

// Text returns a string value.
func Text(s string) Value {
	return Value{kind: KindString, str: s}
}

// Map returns a map value. The caller must not mutate m afterwards.
func Map(m map[string]Value) Value {
	return Value{kind: KindMap, m: m}
}

// List returns a list value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text returns the scalar text of a string value, or "" for any other kind.
func (v Value) Text() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// Len returns the entry count of a map or list, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.m)
	case KindList:
		return len(v.list)
	}
	return 0
}

// Items returns the elements of a list value.
func (v Value) Items() []Value {
	return v.list
}

// Keys returns the keys of a map value in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get looks up a key in a map value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Null(), false
	}
	got, ok := v.m[key]
	return got, ok
}

// Truthy reports whether a value gates a section open. Maps and lists must be
// non-empty; scalars must not be one of the falsey sentinels; null never is.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindMap, KindList:
		return v.Len() > 0
	case KindString:
		_, bad := falsey[v.str]
		return !bad
	}
	return false
}

// Dig walks keys left to right from v. A map looks up the next key (an
// absent key is absent overall). A list passes through unchanged for any
// key: lists are only meaningfully addressed via the implicit "." inside a
// section iteration. A string resolves only the special key "." (to itself).
func Dig(v Value, keys []string) (Value, bool) {
	cur := v
	for _, key := range keys {
		switch cur.kind {
		case KindMap:
			next, ok := cur.m[key]
			if !ok {
				return Null(), false
			}
			cur = next
		case KindList:
			// unchanged
		case KindString:
			if key != "." {
				return Null(), false
			}
		default:
			return Null(), false
		}
	}
	return cur, true
}

// SplitPath splits a dotted key expression such as "a.b.c". The implicit
// self key "." is returned whole.
func SplitPath(key string) []string {
	if key == "." {
		return []string{"."}
	}
	return strings.Split(key, ".")
}
