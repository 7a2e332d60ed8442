// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package skills

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/cv-normalizer/internal/coerce"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

var (
	firstNumberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	listSepRe     = regexp.MustCompile(`\s*[,;\n]\s*`)

	// slashTermRe matches tool names that contain a slash of their own.
	slashTermRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:ci/cd|pl/sql|t/sql|tcp/ip|ui/ux|i/o|a/b|b2b/b2c|r/3|os/2|as/400)(?:$|[^\p{L}\p{N}])`)
)

// Reconciler regroups skills overview rows by canonical category.
type Reconciler struct {
	tables *taxonomy.Tables
}

// NewReconciler returns a Reconciler backed by tables.
func NewReconciler(tables *taxonomy.Tables) *Reconciler {
	return &Reconciler{tables: tables}
}

// triple is one flattened overview entry.
type triple struct {
	key   string
	label string
	tool  string
	years string
}

type group struct {
	label    string
	tools    []string
	maxYears float64
	hasYears bool
}

// Reconcile flattens raw overview rows into one entry per tool, regroups
// them by canonical category key, and merges each group into a single row.
// Groups keep the order in which their key first appeared.
func (r *Reconciler) Reconcile(raw any) []types.SkillRow {
	triples := r.flatten(raw)

	var order []string
	groups := make(map[string]*group)
	for _, t := range triples {
		g, ok := groups[t.key]
		if !ok {
			g = &group{label: t.label}
			groups[t.key] = g
			order = append(order, t.key)
		}
		g.tools = append(g.tools, t.tool)
		if y, ok := FirstNumber(t.years); ok {
			if !g.hasYears || y > g.maxYears {
				g.maxYears = y
			}
			g.hasYears = true
		}
	}

	rows := []types.SkillRow{}
	for _, key := range order {
		g := groups[key]
		tools := Dedup(g.tools)
		if len(tools) == 0 {
			continue
		}
		SortFold(tools)
		row := types.SkillRow{
			Category:    g.label,
			CategoryKey: key,
			Tools:       tools,
		}
		if g.hasYears {
			row.YearsOfExperience = strconv.FormatFloat(g.maxYears, 'f', -1, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

// flatten produces one triple per tool. Rows without a category or without
// any tool are dropped.
func (r *Reconciler) flatten(raw any) []triple {
	var out []triple

	f := coerce.Classify(raw)
	if f.Kind == coerce.KindMap {
		for _, label := range coerce.SortedKeys(f.Map) {
			out = append(out, r.rowTriples(label, "", f.Map[label], "")...)
		}
		return out
	}

	for _, row := range coerce.MapList(raw) {
		label := coerce.String(coerce.Lookup(row, "category", "Category", "name", "Kategorie"))
		key := coerce.String(coerce.Lookup(row, "category_key", "key"))
		tools := coerce.Lookup(row, "tools", "Tools", "skills", "technologies", "Werkzeuge")
		years := coerce.String(coerce.Lookup(row, "years_of_experience", "years", "experience", "yearsOfExperience", "Jahre"))
		out = append(out, r.rowTriples(label, key, tools, years)...)
	}
	return out
}

func (r *Reconciler) rowTriples(label, key string, rawTools any, years string) []triple {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return nil
	}
	tools := splitTools(rawTools)
	if len(tools) == 0 {
		return nil
	}
	if !r.tables.IsCategory(key) {
		key = r.resolveKey(label, tools)
	}
	out := make([]triple, 0, len(tools))
	for _, tool := range tools {
		out = append(out, triple{key: key, label: label, tool: tool, years: years})
	}
	return out
}

// resolveKey maps a row to a category key: by label or alias first, then by
// the category most of its tools classify into, then other_tools.
func (r *Reconciler) resolveKey(label string, tools []string) string {
	if key, ok := r.tables.ResolveCategory(label); ok {
		return key
	}
	counts := make(map[string]int)
	for _, tool := range tools {
		if cat, ok := r.tables.MatchRule(tool); ok {
			counts[cat]++
		}
	}
	best, bestCount := "", 0
	for _, key := range r.tables.CategoryKeys() {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	if best == "" {
		return taxonomy.OtherTools
	}
	return best
}

// splitTools reads tool names from a list or a delimited string. Slashes
// separate tools, so "AWS/GCP" and "Go/Python" split, except in names
// such as "CI/CD" and "PL/SQL" that contain a slash themselves.
func splitTools(v any) []string {
	var out []string
	for _, item := range coerce.Items(v) {
		var parts []string
		if m := coerce.Map(item); m != nil {
			parts = []string{coerce.String(coerce.Lookup(m, "name", "tool", "value"))}
		} else {
			parts = listSepRe.Split(coerce.String(item), -1)
		}
		for _, p := range parts {
			for _, tool := range splitSlash(p) {
				if tool = strings.TrimSpace(tool); tool != "" {
					out = append(out, tool)
				}
			}
		}
	}
	return out
}

func splitSlash(s string) []string {
	if !strings.Contains(s, "/") || slashTermRe.MatchString(s) {
		return []string{s}
	}
	return strings.Split(s, "/")
}

// FirstNumber parses the first number in s, accepting a comma as the
// decimal separator.
func FirstNumber(s string) (float64, bool) {
	m := firstNumberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
