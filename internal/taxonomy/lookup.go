// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"slices"
	"strings"
)

// CategoryKeys returns every category key in table order.
func (t *Tables) CategoryKeys() []string {
	keys := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		keys[i] = c.Key
	}
	return keys
}

// CategoryLabel returns the display label for key, or a title-cased form of
// the key when it is not in the vocabulary.
func (t *Tables) CategoryLabel(key string) string {
	if i, ok := t.categoryByKey[key]; ok {
		return t.Categories[i].Label
	}
	return TitleCase(strings.ReplaceAll(key, "_", " "))
}

// IsCategory reports whether key is in the closed category vocabulary.
func (t *Tables) IsCategory(key string) bool {
	_, ok := t.categoryByKey[key]
	return ok
}

// ResolveCategory maps a free-text category reference (a key, label or
// alias, in any case or punctuation) to its category key.
func (t *Tables) ResolveCategory(ref string) (string, bool) {
	key, ok := t.categoryByRef[refKey(ref)]
	return key, ok
}

// MatchRule returns the category of the first rule matching tool.
func (t *Tables) MatchRule(tool string) (string, bool) {
	for _, r := range t.Rules {
		if r.Pattern.MatchString(tool) {
			return r.Category, true
		}
	}
	return "", false
}

// MatchRescue returns the category of the first rescue rule matching tool.
func (t *Tables) MatchRescue(tool string) (string, bool) {
	for _, r := range t.Rescue {
		if r.Match(tool) {
			return r.Target, true
		}
	}
	return "", false
}

// CollapseLabel returns the vendor label for tool when category belongs to
// a collapse group and tool matches one of its patterns.
func (t *Tables) CollapseLabel(category, tool string) (string, bool) {
	for _, g := range t.Collapse {
		if !slices.Contains(g.Categories, category) {
			continue
		}
		for _, p := range g.Patterns {
			if p.MatchString(tool) {
				return g.Label, true
			}
		}
	}
	return "", false
}

// DomainLabels returns the industry vocabulary in table order.
func (t *Tables) DomainLabels() []string {
	labels := make([]string, len(t.Domains))
	for i, d := range t.Domains {
		labels[i] = d.Target
	}
	return labels
}

// MatchDomains returns every industry label whose keywords occur in text,
// in table order.
func (t *Tables) MatchDomains(text string) []string {
	var out []string
	for _, d := range t.Domains {
		if d.Match(text) {
			out = append(out, d.Target)
		}
	}
	return out
}

// IsForbiddenDomain reports whether s is a technical term that must never
// be treated as an industry.
func (t *Tables) IsForbiddenDomain(s string) bool {
	return t.Forbidden[foldSpace(s)]
}

// CanonicalDomain maps a proposed industry value onto the vocabulary. A
// proposal matches when it contains a label, when it is a substring of a
// label of at least four letters, or when it contains a label keyword.
// Forbidden technical terms never match.
func (t *Tables) CanonicalDomain(proposed string) (string, bool) {
	p := foldSpace(proposed)
	if p == "" || t.Forbidden[p] {
		return "", false
	}
	for _, d := range t.Domains {
		label := strings.ToLower(d.Target)
		if strings.Contains(p, label) || (len(p) >= 4 && strings.Contains(label, p)) {
			return d.Target, true
		}
	}
	for _, d := range t.Domains {
		if d.Match(p) {
			return d.Target, true
		}
	}
	return "", false
}

// LookupLanguage maps a language name or localized alias to its canonical
// English name.
func (t *Tables) LookupLanguage(name string) (string, bool) {
	n := foldSpace(name)
	for _, l := range t.Languages {
		if strings.EqualFold(l.Name, n) {
			return l.Name, true
		}
		for _, a := range l.Aliases {
			if strings.EqualFold(a, n) {
				return l.Name, true
			}
		}
	}
	return "", false
}
