// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindEmpty},
		{"blank string", "   ", KindEmpty},
		{"plain string", "Python", KindScalar},
		{"number", 3.5, KindScalar},
		{"int", 7, KindScalar},
		{"json list literal", `["a", "b"]`, KindEncodedList},
		{"quoted list literal", `['a', 'b']`, KindEncodedList},
		{"decoded list", []any{"a"}, KindList},
		{"string slice", []string{"a"}, KindList},
		{"map", map[string]any{"a": 1}, KindMap},
		{"yaml map", map[any]any{"a": 1}, KindMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in).Kind)
		})
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, []string{}},
		{"empty string", "", []string{}},
		{"json list literal", `["a", "b"]`, []string{"a", "b"}},
		{"python list literal", `['a', 'b', None]`, []string{"a", "b"}},
		{"bare list literal", `[Python, Go]`, []string{"Python", "Go"}},
		{"comma separated", "a, b, c", []string{"a", "b", "c"}},
		{"single word", "Python", []string{"Python"}},
		{"bullet lines", "• Python\n• Go\n- Rust", []string{"Python", "Go", "Rust"}},
		{"comma lists on lines", "Go, Rust\n• AWS, GCP", []string{"Go", "Rust", "AWS", "GCP"}},
		{"list with blanks", []any{" a ", "", nil, "b"}, []string{"a", "b"}},
		{"list of numbers", []any{1.0, 2.5}, []string{"1", "2.5"}},
		{"list of name objects", []any{map[string]any{"name": "AWS", "years_experience": 3}}, []string{"AWS"}},
		{"map without name", map[string]any{"x": 1}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StringList(tt.in))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "Jane Doe", String("  Jane Doe "))
	assert.Equal(t, "2021", String(2021))
	assert.Equal(t, "3.5", String(3.5))
	assert.Equal(t, "a, b", String([]any{"a", "b"}))
	assert.Equal(t, "[DATE]2020[/DATE]", String("[DATE]2020[/DATE]"))
	assert.Equal(t, "MIT", String(map[string]any{"name": "MIT"}))
}

func TestTextList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, []string{}},
		{"bulleted text", "• Built APIs, tests and docs\n\n– Ran migrations", []string{"Built APIs, tests and docs", "Ran migrations"}},
		{"encoded list", `["Led team", "Wrote code"]`, []string{"Led team", "Wrote code"}},
		{"list with embedded newline", []any{"a\nb", "c"}, []string{"a", "b", "c"}},
		{"star bullets", "* one\n* two", []string{"one", "two"}},
		{"inline bullets", "• one • two •three", []string{"one", "two", "three"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextList(tt.in))
		})
	}
}

func TestResponsibilitiesRoundTrip(t *testing.T) {
	inputs := [][]string{
		{"Designed the ingestion pipeline", "Reduced cost by 30%, improved latency"},
		{"  padded  ", "second"},
		{"single"},
		{},
	}
	for _, x := range inputs {
		assert.Equal(t, JoinLines(x), JoinLines(TextList(x)))
		assert.Equal(t, JoinLines(x), JoinLines(TextList(JoinLines(x))))
	}
}

func TestMapAndMapList(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1.0}, Map(`{"a": 1}`))
	assert.Nil(t, Map("not a map"))
	assert.Nil(t, Map(nil))

	got := MapList([]any{
		map[string]any{"language": "German"},
		"English",
		`{"language": "French"}`,
	})
	assert.Equal(t, []map[string]any{
		{"language": "German"},
		{"language": "French"},
	}, got)

	assert.Equal(t, []map[string]any{{"a": "b"}}, MapList(map[string]any{"a": "b"}))
}

func TestItems(t *testing.T) {
	assert.Nil(t, Items(nil))
	assert.Equal(t, []any{"a", "b"}, Items("a, b"))
	assert.Equal(t, []any{"x"}, Items([]any{"x"}))
}

func TestLookup(t *testing.T) {
	m := map[string]any{"projects": nil, "projects_experience": []any{"p"}}
	assert.Equal(t, []any{"p"}, Lookup(m, "projects", "projects_experience"))
	assert.Nil(t, Lookup(m, "missing"))
}
