// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/cv-normalizer/internal/coerce"
	"github.com/pdiddy/cv-normalizer/internal/skills"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// projects normalizes every project entry. Each project's duration is
// resolved from its own text only, never from another project.
func (n *Normalizer) projects(raw any, rep *Report) []types.Project {
	out := []types.Project{}
	for _, m := range coerce.MapList(raw) {
		p := types.Project{
			ProjectTitle:     coerce.String(coerce.Lookup(m, "project_title", "title", "name", "project")),
			Company:          coerce.String(coerce.Lookup(m, "company", "client", "employer", "Firma")),
			Overview:         coerce.String(coerce.Lookup(m, "overview", "description", "summary")),
			Role:             coerce.String(coerce.Lookup(m, "role", "position")),
			Responsibilities: coerce.TextList(coerce.Lookup(m, "responsibilities", "tasks", "Aufgaben")),
			TechStack:        techStack(coerce.Lookup(m, "tech_stack", "technologies", "tools")),
		}
		if n.cfg.MaxResponsibilityWords > 0 {
			for i, r := range p.Responsibilities {
				p.Responsibilities[i] = truncateWords(r, n.cfg.MaxResponsibilityWords)
			}
		}

		rawDuration := coerce.String(coerce.Lookup(m, "duration", "period", "dates", "Zeitraum"))
		p.Duration = n.dates.Normalize(rawDuration, p.Overview, p.ProjectTitle)
		if rawDuration != "" && p.Duration == "" {
			rep.ClearedDurations++
		}

		proposed := coerce.StringList(coerce.Lookup(m, "domains", "domain", "industry"))
		res := n.domains.Explain(p, proposed)
		p.Domains = res.Domains
		rep.RejectedDomains = append(rep.RejectedDomains, res.Rejected...)

		if !n.cfg.KeepEmptyProjects && !ProjectHasContent(p) {
			rep.DroppedProjects++
			continue
		}
		out = append(out, p)
	}
	return out
}

// ProjectHasContent reports whether p carries any text worth keeping.
func ProjectHasContent(p types.Project) bool {
	for _, s := range []string{p.ProjectTitle, p.Company, p.Role, p.Overview, p.Duration} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	for _, list := range [][]string{p.TechStack, p.Responsibilities, p.Domains} {
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				return true
			}
		}
	}
	return false
}

func techStack(v any) []string {
	out := skills.Dedup(coerce.StringList(v))
	if out == nil {
		return []string{}
	}
	return out
}

// truncateWords keeps the first limit words of s.
func truncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ")
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// education reads rows from structured entries, German editor rows, or
// free text with one entry per line.
func education(raw any) []types.EducationEntry {
	out := []types.EducationEntry{}

	var items []any
	if f := coerce.Classify(raw); f.Kind == coerce.KindScalar && coerce.Map(f.Scalar) == nil {
		for _, line := range coerce.TextList(f.Scalar) {
			items = append(items, line)
		}
	} else {
		items = coerce.Items(raw)
	}

	for _, item := range items {
		var e types.EducationEntry
		if m := coerce.Map(item); m != nil {
			e = types.EducationEntry{
				Institution: coerce.String(coerce.Lookup(m, "institution", "Institution", "school", "university")),
				Degree:      coerce.String(coerce.Lookup(m, "degree", "Abschluss", "field", "title")),
				Year:        coerce.String(coerce.Lookup(m, "year", "Jahr", "years", "period")),
			}
		} else {
			e = educationLine(coerce.String(item))
		}
		if !e.IsEmpty() {
			out = append(out, e)
		}
	}
	return out
}

// educationLine splits "MSc Computer Science, TU Berlin, 2015" into degree,
// institution and year. Without a comma the whole line is the degree.
func educationLine(s string) types.EducationEntry {
	var e types.EducationEntry
	if loc := yearRe.FindAllStringIndex(s, -1); len(loc) > 0 {
		last := loc[len(loc)-1]
		e.Year = s[last[0]:last[1]]
		s = s[:last[0]] + s[last[1]:]
	}
	s = strings.Trim(strings.TrimSpace(s), ",;()-– ")
	degree, institution, _ := strings.Cut(s, ",")
	e.Degree = strings.Trim(strings.TrimSpace(degree), ",;()-– ")
	e.Institution = strings.Trim(strings.TrimSpace(institution), ",;()-– ")
	return e
}
