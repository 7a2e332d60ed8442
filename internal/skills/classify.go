// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package skills reconciles the two skill views of a CV record: the
// hard-skill map keyed by taxonomy category, and the skills overview table
// of category rows with experience years.
//
// Classification runs as separate stages so precedence stays explicit:
// flatten, rule assignment (first match wins), rescue of catch-all tools,
// vendor collapse, then dedup and sort.
package skills

import (
	"sort"
	"strings"

	"github.com/pdiddy/cv-normalizer/internal/coerce"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// Classifier maps free-text tool names onto the category vocabulary.
type Classifier struct {
	tables *taxonomy.Tables
	policy types.CollapsePolicy
}

// NewClassifier returns a Classifier. An empty policy selects collapse.
func NewClassifier(tables *taxonomy.Tables, policy types.CollapsePolicy) *Classifier {
	if policy == "" {
		policy = types.CollapseVendors
	}
	return &Classifier{tables: tables, policy: policy}
}

// Stats counts what each stage did during one classification.
type Stats struct {
	Tools     int
	Unmatched int
	Rescued   int
	Collapsed int
	Dropped   int
}

// Classify returns the canonical hard-skill map for raw. The result never
// contains empty categories and is stable under repeated classification.
func (c *Classifier) Classify(raw any) map[string][]string {
	out, _ := c.ClassifyStats(raw)
	return out
}

// ClassifyStats is Classify with per-stage counts.
func (c *Classifier) ClassifyStats(raw any) (map[string][]string, Stats) {
	var st Stats
	tools := FlattenTools(raw)
	st.Tools = len(tools)

	assigned := c.assign(tools, &st)
	c.rescue(assigned, &st)
	if c.policy == types.CollapseVendors {
		c.collapse(assigned, &st)
	}
	out := finalize(assigned)

	kept := 0
	for _, v := range out {
		kept += len(v)
	}
	st.Dropped = st.Tools - kept
	return out, st
}

// FlattenTools extracts every tool name from a hard-skill value. Categories
// are visited in key order so duplicate resolution is deterministic.
func FlattenTools(raw any) []string {
	var out []string
	f := coerce.Classify(raw)
	switch f.Kind {
	case coerce.KindMap:
		for _, key := range coerce.SortedKeys(f.Map) {
			out = append(out, toolNames(f.Map[key])...)
		}
	default:
		out = toolNames(raw)
	}
	return out
}

// toolNames reads a list of tools, each either a string or an object with
// a name. Comma separated strings are split.
func toolNames(v any) []string {
	var out []string
	for _, item := range coerce.Items(v) {
		if m := coerce.Map(item); m != nil {
			if name := coerce.String(coerce.Lookup(m, "name", "tool", "value")); name != "" {
				out = append(out, name)
			}
			continue
		}
		out = append(out, coerce.StringList(item)...)
	}
	return out
}

// assign applies the ordered rule table. Unmatched tools go to other_tools.
func (c *Classifier) assign(tools []string, st *Stats) map[string][]string {
	out := make(map[string][]string)
	for _, tool := range tools {
		cat, ok := c.tables.MatchRule(tool)
		if !ok {
			cat = taxonomy.OtherTools
			st.Unmatched++
		}
		out[cat] = append(out[cat], tool)
	}
	return out
}

// rescue moves catch-all tools matching a secondary keyword out of
// other_tools.
func (c *Classifier) rescue(m map[string][]string, st *Stats) {
	var remaining []string
	for _, tool := range m[taxonomy.OtherTools] {
		if cat, ok := c.tables.MatchRescue(tool); ok {
			m[cat] = append(m[cat], tool)
			st.Rescued++
			continue
		}
		remaining = append(remaining, tool)
	}
	m[taxonomy.OtherTools] = remaining
}

// collapse rewrites vendor synonyms to their canonical vendor label. Each
// mention maps to its own vendor; vendors are never merged with each other.
func (c *Classifier) collapse(m map[string][]string, st *Stats) {
	for cat, tools := range m {
		for i, tool := range tools {
			if label, ok := c.tables.CollapseLabel(cat, tool); ok && label != tool {
				tools[i] = label
				st.Collapsed++
			}
		}
	}
}

// finalize deduplicates each category case- and space-insensitively, sorts
// alphabetically ignoring case, and drops empty categories.
func finalize(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for cat, tools := range m {
		uniq := Dedup(tools)
		if len(uniq) == 0 {
			continue
		}
		SortFold(uniq)
		out[cat] = uniq
	}
	return out
}

// Dedup keeps the first occurrence of each tool, comparing names
// lower-cased with spaces removed.
func Dedup(tools []string) []string {
	seen := make(map[string]bool, len(tools))
	var out []string
	for _, t := range tools {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		key := dedupKey(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// SortFold sorts names alphabetically ignoring case, breaking ties by the
// exact string.
func SortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}

func dedupKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}
