// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefault(t *testing.T) *Tables {
	t.Helper()
	tables, err := Default()
	require.NoError(t, err)
	return tables
}

func TestDefaultTablesLoad(t *testing.T) {
	tables := mustDefault(t)

	assert.True(t, tables.IsCategory(OtherTools))
	assert.Len(t, tables.CategoryKeys(), 17)
	assert.NotEmpty(t, tables.Rules)
	assert.NotEmpty(t, tables.Rescue)
	assert.Len(t, tables.Collapse, 3)
	assert.NotEmpty(t, tables.Domains)
	assert.NotEmpty(t, tables.Languages)
}

func TestLoadEmptyPathUsesEmbedded(t *testing.T) {
	tables, err := Load("")
	require.NoError(t, err)
	assert.Same(t, mustDefault(t), tables)
}

func TestMatchRule(t *testing.T) {
	tables := mustDefault(t)

	tests := []struct {
		tool string
		want string
		ok   bool
	}{
		{"Python", "programming_languages", true},
		{"C++", "programming_languages", true},
		{"C#", "programming_languages", true},
		{"JavaScript", "programming_languages", true},
		{"Java", "programming_languages", true},
		{"SQL Server", "databases", true},
		{"Azure DevOps", "ci_cd_tools", true},
		{"Azure Key Vault", "security", true},
		{"Azure Data Factory", "data_engineering", true},
		{"Azure Monitor", "monitoring_security", true},
		{"Azure Functions", "cloud_platforms", true},
		{"Azure", "cloud_platforms", true},
		{"Amazon Web Services", "cloud_platforms", true},
		{"Power BI", "bi_tools", true},
		{"Docker Compose", "containers_orchestration", true},
		{"GitHub Actions", "ci_cd_tools", true},
		{"Git", "other_tools", true},
		{"Django REST Framework", "backend", true},
		{"Django", "backend", true},
		{"Hyper-V", "infrastructure_os", true},
		{"Notion", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got, ok := tables.MatchRule(tt.tool)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchRescue(t *testing.T) {
	tables := mustDefault(t)

	got, ok := tables.MatchRescue("Data Lake architecture")
	assert.True(t, ok)
	assert.Equal(t, "data_engineering", got)

	got, ok = tables.MatchRescue("KPI dashboards")
	assert.True(t, ok)
	assert.Equal(t, "analytics", got)

	got, ok = tables.MatchRescue("ASP.NET Core")
	assert.True(t, ok)
	assert.Equal(t, "backend", got)

	_, ok = tables.MatchRescue("Notion")
	assert.False(t, ok)
}

func TestCollapseLabel(t *testing.T) {
	tables := mustDefault(t)

	label, ok := tables.CollapseLabel("cloud_platforms", "Azure Functions")
	assert.True(t, ok)
	assert.Equal(t, "Microsoft Azure", label)

	label, ok = tables.CollapseLabel("cloud_platforms", "AWS Lambda")
	assert.True(t, ok)
	assert.Equal(t, "AWS", label)

	label, ok = tables.CollapseLabel("cloud_platforms", "GCP")
	assert.True(t, ok)
	assert.Equal(t, "Google Cloud", label)

	_, ok = tables.CollapseLabel("ci_cd_tools", "Azure DevOps")
	assert.False(t, ok, "collapse applies only to its own categories")

	_, ok = tables.CollapseLabel("cloud_platforms", "Heroku")
	assert.False(t, ok)
}

func TestResolveCategory(t *testing.T) {
	tables := mustDefault(t)

	tests := []struct {
		ref  string
		want string
	}{
		{"cloud_platforms", "cloud_platforms"},
		{"Cloud Platforms", "cloud_platforms"},
		{"Cloud", "cloud_platforms"},
		{"CI/CD", "ci_cd_tools"},
		{"DevOps & IaC", "devops_iac"},
		{"Programming Languages", "programming_languages"},
		{"MONITORING", "monitoring_security"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := tables.ResolveCategory(tt.ref)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := tables.ResolveCategory("Soft Skills")
	assert.False(t, ok)
}

func TestCategoryLabel(t *testing.T) {
	tables := mustDefault(t)
	assert.Equal(t, "DevOps & IaC", tables.CategoryLabel("devops_iac"))
	assert.Equal(t, "CI/CD Tools", tables.CategoryLabel("ci_cd_tools"))
	assert.Equal(t, "Soft Skills", tables.CategoryLabel("soft_skills"))
}

func TestCanonicalDomain(t *testing.T) {
	tables := mustDefault(t)

	tests := []struct {
		proposed string
		want     string
		ok       bool
	}{
		{"Banking", "Banking", true},
		{"banking", "Banking", true},
		{"Retail & E-Commerce", "Retail", true},
		{"Health", "Healthcare", true},
		{"Online banking platform", "Banking", true},
		{"Cloud", "", false},
		{"DevOps", "", false},
		{"Machine Learning", "", false},
		{"IT", "", false},
		{"", "", false},
		{"Quantum Widgets", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.proposed, func(t *testing.T) {
			got, ok := tables.CanonicalDomain(tt.proposed)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchDomains(t *testing.T) {
	tables := mustDefault(t)

	got := tables.MatchDomains("Built a payment platform for a retail bank")
	assert.Equal(t, []string{"Banking", "Finance", "Retail"}, got)

	assert.Empty(t, tables.MatchDomains("Migrated Kubernetes clusters to the cloud"))
	assert.Empty(t, tables.MatchDomains("embankment"), "keywords match whole words only")
}

func TestLookupLanguage(t *testing.T) {
	tables := mustDefault(t)

	name, ok := tables.LookupLanguage("Deutsch")
	assert.True(t, ok)
	assert.Equal(t, "German", name)

	name, ok = tables.LookupLanguage("english")
	assert.True(t, ok)
	assert.Equal(t, "English", name)

	_, ok = tables.LookupLanguage("Klingon")
	assert.False(t, ok)
}

func TestParseInvalidTables(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		section string
	}{
		{
			name:    "malformed yaml",
			yaml:    "categories: [",
			section: "",
		},
		{
			name:    "no categories",
			yaml:    "rules: []",
			section: "categories",
		},
		{
			name: "missing catch-all",
			yaml: `
categories:
  - {key: backend, label: Backend}
`,
			section: "categories",
		},
		{
			name: "unknown rule category",
			yaml: `
categories:
  - {key: other_tools, label: Other Tools}
rules:
  - {category: nope, patterns: ['x']}
`,
			section: "rules[0]",
		},
		{
			name: "bad regex",
			yaml: `
categories:
  - {key: other_tools, label: Other Tools}
rules:
  - {category: other_tools, patterns: ['(unclosed']}
`,
			section: "rules[0]",
		},
		{
			name: "forbidden industry label",
			yaml: `
categories:
  - {key: other_tools, label: Other Tools}
rules:
  - {category: other_tools, patterns: ['git']}
forbidden_domains: [cloud]
domains:
  - {label: Cloud, keywords: [cloud]}
`,
			section: "domains[0]",
		},
		{
			name: "no languages",
			yaml: `
categories:
  - {key: other_tools, label: Other Tools}
rules:
  - {category: other_tools, patterns: ['git']}
domains:
  - {label: Banking, keywords: [bank]}
`,
			section: "languages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTables))

			var te *TableError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.section, te.Section)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, Embedded(), 0o644))

	tables, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, mustDefault(t).CategoryKeys(), tables.CategoryKeys())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidTables)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "German", TitleCase("german"))
	assert.Equal(t, "Real Estate", TitleCase("  real   ESTATE "))
	assert.Equal(t, "", TitleCase("   "))
}
