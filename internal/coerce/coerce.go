// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coerce converts loosely-typed extractor fields into their canonical
// container types. Nothing here fails: the worst outcome of any conversion is
// an empty value or a single-element list holding the original text.
package coerce

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the shape a raw field arrived in.
type Kind int

const (
	// KindEmpty is nil or a whitespace-only string.
	KindEmpty Kind = iota
	// KindScalar is a plain string, number or boolean.
	KindScalar
	// KindList is a decoded list.
	KindList
	// KindEncodedList is a string holding a list literal such as
	// `["a", "b"]` or `['a', 'b']`.
	KindEncodedList
	// KindMap is a decoded mapping.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindEncodedList:
		return "encoded-list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field is a raw value classified at the pipeline boundary. Exactly one of
// Scalar, Items or Map is meaningful, selected by Kind.
type Field struct {
	Kind   Kind
	Scalar string
	Items  []any
	Map    map[string]any
}

// Classify inspects v and returns its tagged form. Encoded list literals are
// decoded here, so KindEncodedList fields carry their Items.
func Classify(v any) Field {
	switch x := v.(type) {
	case nil:
		return Field{Kind: KindEmpty}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return Field{Kind: KindEmpty}
		}
		if items, ok := parseListLiteral(s); ok {
			return Field{Kind: KindEncodedList, Items: items}
		}
		return Field{Kind: KindScalar, Scalar: s}
	case []any:
		return Field{Kind: KindList, Items: x}
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return Field{Kind: KindList, Items: items}
	case []map[string]any:
		items := make([]any, len(x))
		for i, m := range x {
			items[i] = m
		}
		return Field{Kind: KindList, Items: items}
	case map[string]any:
		return Field{Kind: KindMap, Map: x}
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return Field{Kind: KindMap, Map: m}
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = val
		}
		return Field{Kind: KindMap, Map: m}
	}
	s := scalarString(v)
	if s == "" {
		return Field{Kind: KindEmpty}
	}
	return Field{Kind: KindScalar, Scalar: s}
}

// String returns v as a trimmed scalar. Lists are joined with ", ", maps
// yield their name-like entry.
func String(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	f := Classify(v)
	switch f.Kind {
	case KindScalar:
		return f.Scalar
	case KindList, KindEncodedList:
		return strings.Join(stringItems(f.Items), ", ")
	case KindMap:
		return nameOf(f.Map)
	}
	return ""
}

// StringList returns v as a list of trimmed, non-empty strings. The result
// is never nil.
//
// Strings are interpreted in order as: a JSON list literal, a permissive
// quoted list literal, lines of bullet text, and finally comma separated
// values. A plain word becomes a single-element list.
func StringList(v any) []string {
	f := Classify(v)
	switch f.Kind {
	case KindList, KindEncodedList:
		return stringItems(f.Items)
	case KindMap:
		if name := nameOf(f.Map); name != "" {
			return []string{name}
		}
		return []string{}
	case KindScalar:
		out := []string{}
		for _, line := range splitLines(f.Scalar) {
			for _, part := range strings.Split(line, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		return out
	}
	return []string{}
}

// TextList converts free-form responsibility text into one entry per line,
// with leading bullet glyphs removed. Unlike StringList it never splits on
// commas, since sentences contain them. The result is never nil.
func TextList(v any) []string {
	f := Classify(v)
	switch f.Kind {
	case KindList, KindEncodedList:
		out := []string{}
		for _, item := range f.Items {
			for _, line := range splitLines(scalarOrName(item)) {
				out = append(out, line)
			}
		}
		return out
	case KindScalar:
		lines := splitLines(f.Scalar)
		if len(lines) == 1 && strings.Contains(lines[0], "•") {
			return splitLines(strings.ReplaceAll(lines[0], "•", "\n"))
		}
		return lines
	}
	return []string{}
}

// JoinLines renders a list as newline-separated text, skipping blank items.
func JoinLines(items []string) string {
	var lines []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// Map returns v as a mapping. A string holding a JSON object is decoded.
// Anything else yields nil.
func Map(v any) map[string]any {
	f := Classify(v)
	switch f.Kind {
	case KindMap:
		return f.Map
	case KindScalar:
		if strings.HasPrefix(f.Scalar, "{") {
			var m map[string]any
			if err := json.Unmarshal([]byte(f.Scalar), &m); err == nil {
				return m
			}
		}
	}
	return nil
}

// Items returns the elements of a list-like value. A single mapping becomes
// a one-element list and a scalar is split as by StringList.
func Items(v any) []any {
	f := Classify(v)
	switch f.Kind {
	case KindList, KindEncodedList:
		return f.Items
	case KindMap:
		return []any{f.Map}
	case KindScalar:
		if m := Map(f.Scalar); m != nil {
			return []any{m}
		}
		parts := StringList(f.Scalar)
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		return items
	}
	return nil
}

// MapList returns every mapping element of a list-like value, decoding
// encoded JSON objects. Non-mapping elements are dropped.
func MapList(v any) []map[string]any {
	var out []map[string]any
	for _, item := range Items(v) {
		if m := Map(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Lookup returns the first non-empty value in m under any of keys.
func Lookup(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && Classify(v).Kind != KindEmpty {
			return v
		}
	}
	return nil
}

// stringItems stringifies list elements, dropping empties.
func stringItems(items []any) []string {
	out := []string{}
	for _, item := range items {
		if s := scalarOrName(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalarOrName(v any) string {
	if m := Map(v); m != nil {
		return nameOf(m)
	}
	switch x := v.(type) {
	case []any:
		return strings.Join(stringItems(x), ", ")
	}
	return strings.TrimSpace(scalarString(v))
}

// nameKeys are tried in order when a mapping stands in for a string.
var nameKeys = []string{"name", "value", "language", "title", "tool"}

func nameOf(m map[string]any) string {
	for _, k := range nameKeys {
		if v, ok := m[k]; ok {
			if s := strings.TrimSpace(scalarString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// bulletPrefix holds glyphs stripped from the start of a line.
const bulletPrefix = "•◦▪●∙‣⁃*-·–—"

// splitLines splits text into trimmed, non-empty lines with leading bullets
// removed.
func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, bulletPrefix+" \t")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseListLiteral decodes s when it is bracketed like a list literal. JSON
// is tried first, then a permissive reading that accepts single quotes,
// bare tokens and None/null.
func parseListLiteral(s string) ([]any, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err == nil {
		return items, true
	}
	return parseLooseList(s[1 : len(s)-1])
}

func parseLooseList(inner string) ([]any, bool) {
	var (
		items []any
		cur   strings.Builder
		quote rune
		depth int
	)
	flush := func() {
		tok := strings.TrimSpace(cur.String())
		cur.Reset()
		if len(tok) >= 2 && (tok[0] == '\'' || tok[0] == '"') && tok[len(tok)-1] == tok[0] {
			tok = tok[1 : len(tok)-1]
		}
		switch tok {
		case "", "None", "null", "nil":
			return
		}
		items = append(items, tok)
	}
	for _, r := range inner {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == '[' || r == '{' || r == '(':
			depth++
			cur.WriteRune(r)
		case (r == ']' || r == '}' || r == ')') && depth > 0:
			depth--
			cur.WriteRune(r)
		case r == ',' && depth == 0:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, false
	}
	flush()
	return items, true
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
