// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize reconciles an extractor record and its source text into
// a canonical NormalizedRecord. Each field family is handled by its own
// component, run in a fixed order: type coercion, date ranges, hard skills,
// skills overview, languages, domains, and finally text sanitizing.
//
// Normalizing an already normalized record returns it unchanged.
package normalize

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cv-normalizer/internal/coerce"
	"github.com/pdiddy/cv-normalizer/internal/daterange"
	"github.com/pdiddy/cv-normalizer/internal/domain"
	"github.com/pdiddy/cv-normalizer/internal/language"
	"github.com/pdiddy/cv-normalizer/internal/sanitize"
	"github.com/pdiddy/cv-normalizer/internal/schema"
	"github.com/pdiddy/cv-normalizer/internal/skills"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// Normalizer runs the reconciliation pipeline. It holds only read-only
// tables and is safe for concurrent use.
type Normalizer struct {
	cfg       types.NormalizeConfig
	dates     *daterange.Normalizer
	skills    *skills.Classifier
	overview  *skills.Reconciler
	languages *language.Resolver
	domains   *domain.Classifier
	log       zerolog.Logger
}

// New builds a Normalizer over tables.
func New(tables *taxonomy.Tables, cfg types.NormalizeConfig, log zerolog.Logger) (*Normalizer, error) {
	if tables == nil {
		return nil, fmt.Errorf("normalizer: %w", taxonomy.ErrInvalidTables)
	}
	langs, err := language.NewResolver(tables)
	if err != nil {
		return nil, fmt.Errorf("compiling language tables: %w", err)
	}
	return &Normalizer{
		cfg:       cfg,
		dates:     daterange.New(cfg.PivotYear),
		skills:    skills.NewClassifier(tables, cfg.Collapse),
		overview:  skills.NewReconciler(tables),
		languages: langs,
		domains:   domain.NewClassifier(tables),
		log:       log,
	}, nil
}

// Report summarizes what the pipeline changed in one record.
type Report struct {
	// Missing lists required fields still empty after normalization.
	Missing []string

	// Skills holds the hard-skill classification counts.
	Skills skills.Stats

	// ClearedDurations counts project durations no evidence could resolve.
	ClearedDurations int

	// RejectedDomains holds proposed domains that were not industries.
	RejectedDomains []string

	// DroppedProjects counts projects removed for having no content.
	DroppedProjects int

	// ScannedLanguages is true when languages came from the source text.
	ScannedLanguages bool
}

// Normalize returns the canonical form of raw. source is the cleaned CV
// text and may be empty. It never fails: unusable values become empty.
func (n *Normalizer) Normalize(raw types.RawRecord, source string) *types.NormalizedRecord {
	rec, _ := n.NormalizeReport(raw, source)
	return rec
}

// NormalizeReport is Normalize with a per-stage Report.
func (n *Normalizer) NormalizeReport(raw types.RawRecord, source string) (*types.NormalizedRecord, Report) {
	var rep Report
	if raw == nil {
		raw = types.RawRecord{}
	}

	rec := &types.NormalizedRecord{
		FullName:       coerce.String(coerce.Lookup(raw, "full_name", "name", "Name")),
		Title:          coerce.String(coerce.Lookup(raw, "title", "position", "headline")),
		ProfileSummary: coerce.String(coerce.Lookup(raw, "profile_summary", "summary", "profile")),
		Website:        coerce.String(coerce.Lookup(raw, "website", "url")),
		Contacts:       contacts(raw),
		Education:      education(coerce.Lookup(raw, "education", "Ausbildung")),
	}

	rec.Projects = n.projects(coerce.Lookup(raw, "projects", "projects_experience"), &rep)

	rec.HardSkills, rep.Skills = n.skills.ClassifyStats(coerce.Lookup(raw, "hard_skills", "skills"))
	rec.SkillsOverview = n.overview.Reconcile(coerce.Lookup(raw, "skills_overview"))

	declared := coerce.Lookup(raw, "languages", "Sprachen")
	rep.ScannedLanguages = len(language.Declared(declared)) == 0
	rec.Languages = n.languages.Resolve(declared, source)

	rec.Domains = domain.Aggregate(rec.Projects)

	sanitize.Record(rec)
	dedupTools(rec)
	rec.Fingerprint = Fingerprint(rec)
	rep.Missing = schema.Missing(rec)

	n.log.Debug().
		Str("full_name", rec.FullName).
		Int("projects", len(rec.Projects)).
		Int("dropped_projects", rep.DroppedProjects).
		Int("tools", rep.Skills.Tools).
		Int("tools_rescued", rep.Skills.Rescued).
		Int("tools_collapsed", rep.Skills.Collapsed).
		Int("durations_cleared", rep.ClearedDurations).
		Strs("domains_rejected", rep.RejectedDomains).
		Bool("languages_scanned", rep.ScannedLanguages).
		Msg("record normalized")

	return rec, rep
}

// contacts reads the contacts mapping plus top-level email, phone and
// linkedin fields.
func contacts(raw types.RawRecord) map[string]string {
	out := make(map[string]string)
	for k, v := range coerce.Map(raw["contacts"]) {
		if s := coerce.String(v); s != "" {
			out[k] = s
		}
	}
	for _, k := range []string{"email", "phone", "linkedin"} {
		if _, ok := out[k]; ok {
			continue
		}
		if s := coerce.String(raw[k]); s != "" {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// dedupTools drops tool names that became equal once bullet glyphs and
// whitespace were sanitized.
func dedupTools(rec *types.NormalizedRecord) {
	for cat, tools := range rec.HardSkills {
		uniq := skills.Dedup(tools)
		if len(uniq) == 0 {
			delete(rec.HardSkills, cat)
			continue
		}
		skills.SortFold(uniq)
		rec.HardSkills[cat] = uniq
	}
	for i := range rec.SkillsOverview {
		row := &rec.SkillsOverview[i]
		if tools := skills.Dedup(row.Tools); len(tools) > 0 {
			skills.SortFold(tools)
			row.Tools = tools
		}
	}
	for i := range rec.Projects {
		if stack := skills.Dedup(rec.Projects[i].TechStack); stack != nil {
			rec.Projects[i].TechStack = stack
		} else {
			rec.Projects[i].TechStack = []string{}
		}
	}
}
