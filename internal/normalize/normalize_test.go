// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cv-normalizer/internal/logging"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

func newNormalizer(t *testing.T, cfg types.NormalizeConfig) *Normalizer {
	t.Helper()
	tables, err := taxonomy.Default()
	require.NoError(t, err)
	n, err := New(tables, cfg, logging.Nop)
	require.NoError(t, err)
	return n
}

func sampleRaw() types.RawRecord {
	return types.RawRecord{
		"full_name":       "Jane  Doe",
		"title":           "Data Engineer",
		"profile_summary": "• Ten years building data platforms",
		"contacts":        map[string]any{"email": "jane@example.com"},
		"phone":           "+49 30 1234",
		"education":       "MSc Computer Science, TU Berlin, 2015",
		"projects_experience": []any{
			map[string]any{
				"project_title":    "Payments platform",
				"company":          "Acme Bank",
				"overview":         "Built the payments backend for a retail bank.",
				"role":             "Lead Engineer",
				"duration":         "07.21 – Jetzt",
				"responsibilities": "• Designed APIs\n• Ran migrations",
				"tech_stack":       `["Go", "Kafka", "go"]`,
				"domains":          "Cloud, Banking",
			},
			map[string]any{
				"title":    "Hospital scheduling",
				"company":  "MedCo",
				"overview": "Scheduling system, 2019 to 2020",
				"duration": "",
			},
			map[string]any{
				"project_title": "Internal tooling",
				"duration":      "n/a",
			},
			map[string]any{"project_title": "", "tech_stack": nil},
		},
		"hard_skills": map[string]any{
			"cloud":     []any{"AWS", "Azure Functions"},
			"languages": "Python, Go",
		},
		"skills_overview": []any{
			map[string]any{"category": "Cloud", "tools": "AWS, Azure", "years_of_experience": "5 years"},
		},
		"languages": []any{map[string]any{"language": "german", "level": ""}},
		"domains":   []any{"AI"},
	}
}

func TestNormalize(t *testing.T) {
	n := newNormalizer(t, types.DefaultConfig().Normalize)

	rec, rep := n.NormalizeReport(sampleRaw(), "")

	assert.Equal(t, "Jane Doe", rec.FullName)
	assert.Equal(t, "Data Engineer", rec.Title)
	assert.Equal(t, "- Ten years building data platforms", rec.ProfileSummary)
	assert.Equal(t, map[string]string{"email": "jane@example.com", "phone": "+49 30 1234"}, rec.Contacts)
	assert.Equal(t, []types.EducationEntry{
		{Institution: "TU Berlin", Degree: "MSc Computer Science", Year: "2015"},
	}, rec.Education)

	require.Len(t, rec.Projects, 3)
	p := rec.Projects[0]
	assert.Equal(t, "Jul 2021 – Present", p.Duration)
	assert.Equal(t, []string{"Designed APIs", "Ran migrations"}, p.Responsibilities)
	assert.Equal(t, []string{"Go", "Kafka"}, p.TechStack)
	assert.Equal(t, []string{"Banking", "Finance", "Retail"}, p.Domains)

	assert.Equal(t, "Hospital scheduling", rec.Projects[1].ProjectTitle)
	assert.Equal(t, "2019 – 2020", rec.Projects[1].Duration)
	assert.Equal(t, []string{"Healthcare"}, rec.Projects[1].Domains)
	assert.Equal(t, "", rec.Projects[2].Duration)

	assert.Equal(t, map[string][]string{
		"cloud_platforms":       {"AWS", "Microsoft Azure"},
		"programming_languages": {"Go", "Python"},
	}, rec.HardSkills)
	assert.Equal(t, []types.SkillRow{{
		Category:          "Cloud",
		CategoryKey:       "cloud_platforms",
		Tools:             []string{"AWS", "Azure"},
		YearsOfExperience: "5",
	}}, rec.SkillsOverview)
	assert.Equal(t, []types.Language{{Language: "German", Level: "Unspecified"}}, rec.Languages)
	assert.Equal(t, []string{"Banking", "Finance", "Healthcare", "Retail"}, rec.Domains)
	assert.Equal(t, Fingerprint(rec), rec.Fingerprint)
	assert.Len(t, rec.Fingerprint, 64)

	assert.Equal(t, []string{"Cloud"}, rep.RejectedDomains)
	assert.Equal(t, 1, rep.ClearedDurations)
	assert.Equal(t, 1, rep.DroppedProjects)
	assert.False(t, rep.ScannedLanguages)
	assert.Empty(t, rep.Missing)
}

// toRaw feeds a normalized record back through the extractor boundary.
func toRaw(t *testing.T, rec *types.NormalizedRecord) types.RawRecord {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var raw types.RawRecord
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, policy := range []types.CollapsePolicy{types.CollapseVendors, types.PreserveVendors} {
		cfg := types.DefaultConfig().Normalize
		cfg.Collapse = policy
		n := newNormalizer(t, cfg)

		once := n.Normalize(sampleRaw(), "")
		twice := n.Normalize(toRaw(t, once), "")
		assert.Equal(t, once, twice, "policy %s", policy)
	}
}

func TestNormalizeDomainsAreUnionOfProjects(t *testing.T) {
	n := newNormalizer(t, types.DefaultConfig().Normalize)

	rec := n.Normalize(sampleRaw(), "")
	var union []string
	for _, p := range rec.Projects {
		union = append(union, p.Domains...)
	}
	assert.ElementsMatch(t, rec.Domains, dedupStrings(union))
	assert.NotContains(t, rec.Domains, "AI")
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func TestNormalizeEmptyRecord(t *testing.T) {
	n := newNormalizer(t, types.DefaultConfig().Normalize)

	rec, rep := n.NormalizeReport(nil, "")
	assert.Equal(t, []types.Project{}, rec.Projects)
	assert.Equal(t, []string{}, rec.Domains)
	assert.Equal(t, []types.Language{}, rec.Languages)
	assert.Empty(t, rec.HardSkills)
	assert.Nil(t, rec.Contacts)
	assert.Len(t, rep.Missing, 7)
}

func TestNormalizeScansSourceForLanguages(t *testing.T) {
	n := newNormalizer(t, types.DefaultConfig().Normalize)

	rec, rep := n.NormalizeReport(types.RawRecord{"languages": "[]"}, "Languages: English C1, German native")
	assert.True(t, rep.ScannedLanguages)
	assert.Equal(t, []types.Language{
		{Language: "English", Level: "C1"},
		{Language: "German", Level: "Native"},
	}, rec.Languages)
}

func TestNormalizeKeepEmptyProjects(t *testing.T) {
	cfg := types.DefaultConfig().Normalize
	cfg.KeepEmptyProjects = true
	n := newNormalizer(t, cfg)

	rec := n.Normalize(types.RawRecord{"projects": []any{map[string]any{}}}, "")
	assert.Len(t, rec.Projects, 1)
}

func TestNormalizeTruncatesResponsibilities(t *testing.T) {
	cfg := types.DefaultConfig().Normalize
	cfg.MaxResponsibilityWords = 3
	n := newNormalizer(t, cfg)

	rec := n.Normalize(types.RawRecord{"projects": []any{map[string]any{
		"project_title":    "ETL",
		"responsibilities": []any{"Designed and built the nightly load", "Wrote docs"},
	}}}, "")
	require.Len(t, rec.Projects, 1)
	assert.Equal(t, []string{"Designed and built", "Wrote docs"}, rec.Projects[0].Responsibilities)
}

func TestNormalizeDurationEvidenceStaysInProject(t *testing.T) {
	n := newNormalizer(t, types.DefaultConfig().Normalize)

	rec := n.Normalize(types.RawRecord{"projects": []any{
		map[string]any{"project_title": "A", "overview": "[DATE]03/2018 - 05/2019[/DATE] rollout"},
		map[string]any{"project_title": "B", "overview": "no dates here"},
		map[string]any{
			"project_title": "C",
			"duration":      "3 years",
			"overview":      "Migrated the 1998 core banking platform, finished 2021.",
		},
	}}, "")
	require.Len(t, rec.Projects, 3)
	assert.Equal(t, "Mar 2018 – May 2019", rec.Projects[0].Duration)
	assert.Equal(t, "", rec.Projects[1].Duration)
	assert.Equal(t, "", rec.Projects[2].Duration)
}

func TestNormalizeDedupsSanitizedTools(t *testing.T) {
	n := newNormalizer(t, types.DefaultConfig().Normalize)

	rec := n.Normalize(types.RawRecord{
		"hard_skills": map[string]any{"x": []any{"Foo·Bar", "Foo-Bar"}},
		"skills_overview": []any{
			map[string]any{"category": "Cloud", "tools": []any{"AWS•Lambda", "AWS-Lambda"}},
		},
		"projects": []any{map[string]any{
			"project_title": "Widgets",
			"tech_stack":    []any{"Foo·Bar", "Foo-Bar"},
		}},
	}, "")

	assert.Equal(t, map[string][]string{"other_tools": {"Foo-Bar"}}, rec.HardSkills)
	require.Len(t, rec.SkillsOverview, 1)
	assert.Equal(t, []string{"AWS-Lambda"}, rec.SkillsOverview[0].Tools)
	require.Len(t, rec.Projects, 1)
	assert.Equal(t, []string{"Foo-Bar"}, rec.Projects[0].TechStack)

	again := n.Normalize(toRaw(t, rec), "")
	assert.Equal(t, rec.Fingerprint, again.Fingerprint)
}

func TestEducation(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []types.EducationEntry
	}{
		{"nil", nil, []types.EducationEntry{}},
		{
			name: "structured rows",
			raw:  []any{map[string]any{"institution": "ETH", "degree": "BSc", "year": 2012.0}},
			want: []types.EducationEntry{{Institution: "ETH", Degree: "BSc", Year: "2012"}},
		},
		{
			name: "german editor rows",
			raw:  []any{map[string]any{"Institution": "TU München", "Abschluss": "Diplom", "Jahr": "2009"}},
			want: []types.EducationEntry{{Institution: "TU München", Degree: "Diplom", Year: "2009"}},
		},
		{
			name: "free text lines",
			raw:  "BSc Physics, Uni Wien (2010)\nCertified Scrum Master",
			want: []types.EducationEntry{
				{Institution: "Uni Wien", Degree: "BSc Physics", Year: "2010"},
				{Degree: "Certified Scrum Master"},
			},
		},
		{"empty rows dropped", []any{map[string]any{"Institution": ""}}, []types.EducationEntry{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, education(tt.raw))
		})
	}
}

func TestProjectHasContent(t *testing.T) {
	assert.False(t, ProjectHasContent(types.Project{}))
	assert.False(t, ProjectHasContent(types.Project{TechStack: []string{" "}}))
	assert.True(t, ProjectHasContent(types.Project{Role: "Lead"}))
	assert.True(t, ProjectHasContent(types.Project{TechStack: []string{"Go"}}))
}

func TestFingerprint(t *testing.T) {
	a := &types.NormalizedRecord{FullName: "Jane", Domains: []string{"Retail"}}
	b := &types.NormalizedRecord{FullName: "Jane", Domains: []string{"Retail"}, Fingerprint: "stale"}
	c := &types.NormalizedRecord{FullName: "John", Domains: []string{"Retail"}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	assert.Equal(t, "", Fingerprint(nil))
}

func TestFilterProjectsByDomains(t *testing.T) {
	projects := []types.Project{
		{ProjectTitle: "a", Domains: []string{"Banking"}},
		{ProjectTitle: "b", Domains: []string{"Retail", "Energy"}},
		{ProjectTitle: "c"},
	}

	got := FilterProjectsByDomains(projects, []string{"energy", " "})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ProjectTitle)

	assert.Len(t, FilterProjectsByDomains(projects, nil), 3)
	assert.Empty(t, FilterProjectsByDomains(projects, []string{"Travel"}))
}

func TestCompanies(t *testing.T) {
	got := Companies([]types.Project{{Company: "Zeta"}, {Company: " Acme "}, {Company: "Zeta"}, {}})
	assert.Equal(t, []string{"Acme", "Zeta"}, got)
}

func TestRemoveEmpty(t *testing.T) {
	in := map[string]any{
		"name":   "Jane",
		"blank":  " ",
		"none":   nil,
		"list":   []any{"", nil, "x", []any{}},
		"nested": map[string]any{"empty": []any{}, "inner": map[string]any{"a": ""}},
		"zero":   0.0,
	}
	assert.Equal(t, map[string]any{
		"name": "Jane",
		"list": []any{"x"},
		"zero": 0.0,
	}, RemoveEmpty(in))
}

func TestCompact(t *testing.T) {
	doc, err := Compact(&types.NormalizedRecord{
		FullName: "Jane",
		Projects: []types.Project{{ProjectTitle: "Shop", Responsibilities: []string{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"full_name": "Jane",
		"projects":  []any{map[string]any{"project_title": "Shop"}},
	}, doc)
}
