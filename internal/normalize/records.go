// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// Fingerprint returns the hex SHA-256 of the record's canonical JSON form,
// ignoring any fingerprint already stored on it. Equal content always
// yields an equal fingerprint.
func Fingerprint(rec *types.NormalizedRecord) string {
	if rec == nil {
		return ""
	}
	c := *rec
	c.Fingerprint = ""
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// FilterProjectsByDomains returns the projects sharing at least one domain
// with selected, compared case-insensitively. An empty selection keeps
// every project.
func FilterProjectsByDomains(projects []types.Project, selected []string) []types.Project {
	want := make(map[string]bool, len(selected))
	for _, d := range selected {
		if d = strings.TrimSpace(d); d != "" {
			want[strings.ToLower(d)] = true
		}
	}
	if len(want) == 0 {
		return append([]types.Project{}, projects...)
	}
	out := []types.Project{}
	for _, p := range projects {
		for _, d := range p.Domains {
			if want[strings.ToLower(strings.TrimSpace(d))] {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Companies returns the sorted set of company names across projects.
func Companies(projects []types.Project) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range projects {
		c := strings.TrimSpace(p.Company)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// RemoveEmpty drops nil values, empty strings, empty lists and empty maps
// from a decoded document, recursively. A container left empty by the
// pass is itself dropped from its parent.
func RemoveEmpty(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			if item = RemoveEmpty(item); !isEmpty(item) {
				out[k] = item
			}
		}
		return out
	case []any:
		out := []any{}
		for _, item := range x {
			if item = RemoveEmpty(item); !isEmpty(item) {
				out = append(out, item)
			}
		}
		return out
	}
	return v
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// Compact returns rec as a generic document with every empty field
// removed, for exports that should not carry placeholders.
func Compact(rec *types.NormalizedRecord) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	out, _ := RemoveEmpty(doc).(map[string]any)
	return out, nil
}
