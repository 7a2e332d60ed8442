// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawRecord is the loosely-typed mapping produced by the upstream extractor.
// Any list-typed field may arrive as nil, a plain string, a string encoding a
// list literal, or a list; scalar fields may arrive as numbers or strings.
type RawRecord map[string]any

// UnspecifiedLevel is the proficiency recorded when no level is known.
const UnspecifiedLevel = "Unspecified"

// PresentMarker is the open end of a running date range.
const PresentMarker = "Present"

// NormalizedRecord is the canonical, internally-consistent CV record.
// Domains always equals the sorted union of every project's Domains.
type NormalizedRecord struct {
	// FullName is the candidate's name as extracted.
	FullName string `json:"full_name" yaml:"full_name"`

	// Title is the candidate's professional headline.
	Title string `json:"title" yaml:"title"`

	// ProfileSummary is the free-text summary paragraph.
	ProfileSummary string `json:"profile_summary" yaml:"profile_summary"`

	// Website is a personal or portfolio URL.
	Website string `json:"website,omitempty" yaml:"website,omitempty"`

	// Contacts maps contact kinds (email, phone, linkedin) to values.
	Contacts map[string]string `json:"contacts,omitempty" yaml:"contacts,omitempty"`

	Education []EducationEntry `json:"education" yaml:"education"`

	// Languages holds one entry per language, unique case-insensitively.
	Languages []Language `json:"languages" yaml:"languages"`

	// Domains is the sorted set of industry labels drawn from projects.
	Domains []string `json:"domains" yaml:"domains"`

	// HardSkills maps a taxonomy category key to its unique tool names.
	HardSkills map[string][]string `json:"hard_skills" yaml:"hard_skills"`

	// SkillsOverview holds one row per skill category.
	SkillsOverview []SkillRow `json:"skills_overview" yaml:"skills_overview"`

	Projects []Project `json:"projects" yaml:"projects"`

	// Fingerprint is a SHA-256 digest of the record content, excluding
	// the fingerprint itself.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// EducationEntry is one education row.
type EducationEntry struct {
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`
	Degree      string `json:"degree,omitempty" yaml:"degree,omitempty"`
	Year        string `json:"year,omitempty" yaml:"year,omitempty"`
}

// IsEmpty reports whether the entry carries no text.
func (e EducationEntry) IsEmpty() bool {
	return e.Institution == "" && e.Degree == "" && e.Year == ""
}

// Language is a spoken language and its declared proficiency. Level is a
// CEFR code, a descriptive term from the source, or UnspecifiedLevel.
type Language struct {
	Language string `json:"language" yaml:"language"`
	Level    string `json:"level" yaml:"level"`
}

// SkillRow is one row of the skills overview table.
type SkillRow struct {
	// Category is the display label, the first label seen for the group.
	Category string `json:"category" yaml:"category"`

	// CategoryKey is the canonical taxonomy key the row was grouped under.
	CategoryKey string `json:"category_key" yaml:"category_key"`

	// Tools is the sorted, deduplicated set of tool names.
	Tools []string `json:"tools" yaml:"tools"`

	// YearsOfExperience is the largest year count seen for the group,
	// formatted without trailing zeros, or empty when none was given.
	YearsOfExperience string `json:"years_of_experience" yaml:"years_of_experience"`
}

// Project is one work-experience entry.
type Project struct {
	ProjectTitle string `json:"project_title" yaml:"project_title"`
	Company      string `json:"company" yaml:"company"`
	Overview     string `json:"overview" yaml:"overview"`
	Role         string `json:"role" yaml:"role"`

	// Duration is a canonical date range or empty.
	Duration string `json:"duration" yaml:"duration"`

	Responsibilities []string `json:"responsibilities" yaml:"responsibilities"`
	TechStack        []string `json:"tech_stack" yaml:"tech_stack"`

	// Domains is a subset of the industry vocabulary.
	Domains []string `json:"domains" yaml:"domains"`
}
