// Package canonical resolves logical fields from loosely structured form
// records. Every resolver is total: missing or malformed input degrades to
// the supplied default and nothing here panics or returns an error.
package canonical

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Record is one raw, untyped form record as decoded from JSON.
type Record map[string]any

// FromJSON decodes a JSON object into a Record.
func FromJSON(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r == nil {
		r = Record{}
	}
	return r, nil
}

// Get walks a dotted path through nested maps and list indexes. A key that
// itself contains dots is matched literally before the path is split.
func (r Record) Get(path string) (any, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	if v, ok := r[path]; ok {
		return v, true
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case Record:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Sub returns the nested object at path, or an empty Record.
func (r Record) Sub(path string) Record {
	v, ok := r.Get(path)
	if !ok {
		return Record{}
	}
	if m := asMap(v); m != nil {
		return m
	}
	return Record{}
}

// List returns the first candidate that is a non-empty list, together with
// the path it was found at. Objects keyed "0", "1", ... are treated as lists.
func (r Record) List(paths ...string) ([]any, string) {
	for _, p := range paths {
		v, ok := r.Get(p)
		if !ok {
			continue
		}
		if items := asList(v); len(items) > 0 {
			return items, p
		}
	}
	return nil, ""
}

func asMap(v any) Record {
	switch m := v.(type) {
	case map[string]any:
		return Record(m)
	case Record:
		return m
	}
	return nil
}

// AsRecord converts a list element to a Record. Scalars become {"description": v}.
func AsRecord(v any) Record {
	if m := asMap(v); m != nil {
		return m
	}
	if s := toString(v); s != "" {
		return Record{"description": s}
	}
	return Record{}
}

func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	case []Record:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	case map[string]any:
		return indexedList(l)
	case Record:
		return indexedList(l)
	}
	return nil
}

// indexedList handles legacy stores that persisted arrays as {"0": .., "1": ..}.
func indexedList(m map[string]any) []any {
	if len(m) == 0 {
		return nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil
		}
		keys = append(keys, i)
	}
	sort.Ints(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[strconv.Itoa(k)])
	}
	return out
}
