// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema reports required record fields that are absent or empty.
// It never modifies a record and never fails.
package schema

import (
	"strings"

	"github.com/pdiddy/cv-normalizer/internal/coerce"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// RequiredFields lists the top-level fields every normalized record must
// carry, in report order.
var RequiredFields = []string{
	"profile_summary",
	"education",
	"projects",
	"hard_skills",
	"languages",
	"domains",
	"skills_overview",
}

// aliases are alternative raw keys accepted for a required field.
var aliases = map[string][]string{
	"projects": {"projects_experience"},
}

// Missing returns the required fields of rec that are empty.
func Missing(rec *types.NormalizedRecord) []string {
	if rec == nil {
		return append([]string{}, RequiredFields...)
	}
	present := map[string]bool{
		"profile_summary": strings.TrimSpace(rec.ProfileSummary) != "",
		"education":       len(rec.Education) > 0,
		"projects":        len(rec.Projects) > 0,
		"hard_skills":     len(rec.HardSkills) > 0,
		"languages":       len(rec.Languages) > 0,
		"domains":         len(rec.Domains) > 0,
		"skills_overview": len(rec.SkillsOverview) > 0,
	}
	out := []string{}
	for _, f := range RequiredFields {
		if !present[f] {
			out = append(out, f)
		}
	}
	return out
}

// MissingInRaw returns the required fields absent or empty in an extractor
// record. Encoded empty lists such as "[]" count as empty.
func MissingInRaw(raw map[string]any) []string {
	out := []string{}
	for _, f := range RequiredFields {
		keys := append([]string{f}, aliases[f]...)
		if !hasContent(coerce.Lookup(raw, keys...)) {
			out = append(out, f)
		}
	}
	return out
}

func hasContent(v any) bool {
	f := coerce.Classify(v)
	switch f.Kind {
	case coerce.KindEmpty:
		return false
	case coerce.KindList, coerce.KindEncodedList:
		return len(f.Items) > 0
	case coerce.KindMap:
		return len(f.Map) > 0
	}
	return true
}
