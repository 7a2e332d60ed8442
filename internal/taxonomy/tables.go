// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy loads the read-only classification tables shared by every
// normalization stage: the skill category vocabulary and its ordered pattern
// rules, the rescue and vendor collapse tables, the industry keyword
// dictionary with its forbidden technical terms, and the language lists.
//
// Tables are loaded once per process. A table that fails to parse or
// validate is the only fatal condition in the pipeline; Load reports it as a
// *TableError wrapping ErrInvalidTables.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

// OtherTools is the catch-all skill category for unmatched tools.
const OtherTools = "other_tools"

//go:embed tables.yaml
var embeddedTables []byte

// ErrInvalidTables is matched by every error returned from Load and Parse.
var ErrInvalidTables = errors.New("invalid classification tables")

// TableError describes a table that could not be parsed or validated.
type TableError struct {
	// Section names the offending part of the file (e.g. "rules[3]").
	Section string
	Err     error
}

func (e *TableError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("taxonomy: %v", e.Err)
	}
	return fmt.Sprintf("taxonomy: %s: %v", e.Section, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidTables.
func (e *TableError) Is(target error) bool { return target == ErrInvalidTables }

// Category is one entry in the closed skill category vocabulary.
type Category struct {
	Key     string   `yaml:"key"`
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// Rule assigns tools matching Pattern to Category.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
}

// KeywordRule assigns text containing any keyword as a whole word to Target.
// Target is a category key for rescue rules and an industry label for
// domain rules.
type KeywordRule struct {
	Target   string
	Keywords []string
	matchers []*regexp.Regexp
}

// Match reports whether text contains one of the rule's keywords.
func (r KeywordRule) Match(text string) bool {
	for _, m := range r.matchers {
		if m.MatchString(text) {
			return true
		}
	}
	return false
}

// CollapseGroup rewrites vendor synonyms in Categories to Label.
type CollapseGroup struct {
	Label      string
	Categories []string
	Patterns   []*regexp.Regexp
}

// LanguageEntry is a recognised spoken language and its localized spellings.
type LanguageEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Tables holds the compiled classification tables. It is safe for
// concurrent use once loaded.
type Tables struct {
	Categories  []Category
	Rules       []Rule
	Rescue      []KeywordRule
	Collapse    []CollapseGroup
	Domains     []KeywordRule
	Forbidden   map[string]bool
	Languages   []LanguageEntry
	Proficiency []string

	categoryByKey map[string]int
	categoryByRef map[string]string
}

// tablesFile is the on-disk YAML layout.
type tablesFile struct {
	Categories []Category `yaml:"categories"`
	Rules      []struct {
		Category string   `yaml:"category"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"rules"`
	Rescue []struct {
		Category string   `yaml:"category"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"rescue"`
	Collapse []struct {
		Label      string   `yaml:"label"`
		Categories []string `yaml:"categories"`
		Patterns   []string `yaml:"patterns"`
	} `yaml:"collapse"`
	Domains []struct {
		Label    string   `yaml:"label"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"domains"`
	ForbiddenDomains []string        `yaml:"forbidden_domains"`
	Languages        []LanguageEntry `yaml:"languages"`
	Proficiency      []string        `yaml:"proficiency"`
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return Parse(embeddedTables)
})

// Default returns the embedded tables, parsing them on first use.
func Default() (*Tables, error) {
	return defaultTables()
}

// Load reads tables from path. An empty path selects the embedded tables.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TableError{Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return Parse(data)
}

// Embedded returns the raw embedded YAML.
func Embedded() []byte {
	return embeddedTables
}

// Parse decodes, compiles and validates a YAML table document.
func Parse(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &TableError{Err: fmt.Errorf("parsing yaml: %w", err)}
	}

	t := &Tables{
		Categories:    f.Categories,
		Forbidden:     make(map[string]bool, len(f.ForbiddenDomains)),
		Languages:     f.Languages,
		Proficiency:   f.Proficiency,
		categoryByKey: make(map[string]int, len(f.Categories)),
		categoryByRef: make(map[string]string),
	}

	if len(f.Categories) == 0 {
		return nil, &TableError{Section: "categories", Err: errors.New("no categories defined")}
	}
	for i, c := range f.Categories {
		if c.Key == "" || c.Label == "" {
			return nil, &TableError{Section: fmt.Sprintf("categories[%d]", i), Err: errors.New("key and label are required")}
		}
		if _, dup := t.categoryByKey[c.Key]; dup {
			return nil, &TableError{Section: fmt.Sprintf("categories[%d]", i), Err: fmt.Errorf("duplicate key %q", c.Key)}
		}
		t.categoryByKey[c.Key] = i
		t.categoryByRef[refKey(c.Key)] = c.Key
		t.categoryByRef[refKey(c.Label)] = c.Key
		for _, a := range c.Aliases {
			t.categoryByRef[refKey(a)] = c.Key
		}
	}
	if _, ok := t.categoryByKey[OtherTools]; !ok {
		return nil, &TableError{Section: "categories", Err: fmt.Errorf("catch-all category %q missing", OtherTools)}
	}

	for i, g := range f.Rules {
		section := fmt.Sprintf("rules[%d]", i)
		if _, ok := t.categoryByKey[g.Category]; !ok {
			return nil, &TableError{Section: section, Err: fmt.Errorf("unknown category %q", g.Category)}
		}
		for _, p := range g.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, &TableError{Section: section, Err: err}
			}
			t.Rules = append(t.Rules, Rule{Category: g.Category, Pattern: re})
		}
	}
	if len(t.Rules) == 0 {
		return nil, &TableError{Section: "rules", Err: errors.New("no rules defined")}
	}

	for i, g := range f.Rescue {
		section := fmt.Sprintf("rescue[%d]", i)
		if _, ok := t.categoryByKey[g.Category]; !ok {
			return nil, &TableError{Section: section, Err: fmt.Errorf("unknown category %q", g.Category)}
		}
		rule, err := compileKeywords(g.Category, g.Keywords)
		if err != nil {
			return nil, &TableError{Section: section, Err: err}
		}
		t.Rescue = append(t.Rescue, rule)
	}

	for i, g := range f.Collapse {
		section := fmt.Sprintf("collapse[%d]", i)
		if g.Label == "" {
			return nil, &TableError{Section: section, Err: errors.New("label is required")}
		}
		group := CollapseGroup{Label: g.Label, Categories: g.Categories}
		for _, c := range g.Categories {
			if _, ok := t.categoryByKey[c]; !ok {
				return nil, &TableError{Section: section, Err: fmt.Errorf("unknown category %q", c)}
			}
		}
		for _, p := range g.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, &TableError{Section: section, Err: err}
			}
			group.Patterns = append(group.Patterns, re)
		}
		t.Collapse = append(t.Collapse, group)
	}

	for _, term := range f.ForbiddenDomains {
		t.Forbidden[foldSpace(term)] = true
	}

	if len(f.Domains) == 0 {
		return nil, &TableError{Section: "domains", Err: errors.New("no industry labels defined")}
	}
	for i, d := range f.Domains {
		section := fmt.Sprintf("domains[%d]", i)
		if d.Label == "" {
			return nil, &TableError{Section: section, Err: errors.New("label is required")}
		}
		if t.Forbidden[foldSpace(d.Label)] {
			return nil, &TableError{Section: section, Err: fmt.Errorf("label %q is a forbidden technical term", d.Label)}
		}
		for _, kw := range d.Keywords {
			if t.Forbidden[foldSpace(kw)] {
				return nil, &TableError{Section: section, Err: fmt.Errorf("keyword %q is a forbidden technical term", kw)}
			}
		}
		rule, err := compileKeywords(d.Label, d.Keywords)
		if err != nil {
			return nil, &TableError{Section: section, Err: err}
		}
		t.Domains = append(t.Domains, rule)
	}

	if len(t.Languages) == 0 {
		return nil, &TableError{Section: "languages", Err: errors.New("no languages defined")}
	}

	return t, nil
}

// compileKeywords builds Unicode-aware whole-word matchers. Keywords may
// contain punctuation (".net", "ci/cd"), so \b is not used.
func compileKeywords(target string, keywords []string) (KeywordRule, error) {
	if len(keywords) == 0 {
		return KeywordRule{}, fmt.Errorf("%q has no keywords", target)
	}
	rule := KeywordRule{Target: target, Keywords: keywords}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return KeywordRule{}, fmt.Errorf("%q has an empty keyword", target)
		}
		re, err := WholeWord(kw)
		if err != nil {
			return KeywordRule{}, err
		}
		rule.matchers = append(rule.matchers, re)
	}
	return rule, nil
}

// WholeWord compiles a case-insensitive matcher for term bounded by
// non-word characters or the ends of the text.
func WholeWord(term string) (*regexp.Regexp, error) {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)(^|[^\p{L}\p{N}_])` + strings.Join(words, `\s+`) + `($|[^\p{L}\p{N}_])`
	return regexp.Compile(pattern)
}

// refKey normalizes a category reference for alias lookup.
func refKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func foldSpace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
