// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize normalizes whitespace and bullet glyphs in free text.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

var (
	bulletRe     = regexp.MustCompile(`[•◦▪●∙‣⁃·]`)
	horizontalRe = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2007}\x{202F}]+`)
	newlineRe    = regexp.MustCompile(` *\r?\n *`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// Text replaces bullet glyph variants with "-", collapses runs of
// horizontal whitespace (including non-breaking spaces) to one space,
// strips spaces around newlines and returns the NFC form. Leading and
// trailing whitespace is removed.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = bulletRe.ReplaceAllString(s, "-")
	s = horizontalRe.ReplaceAllString(s, " ")
	s = newlineRe.ReplaceAllString(s, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Value walks maps and slices and sanitizes every string leaf. Containers
// keep their shape; non-string leaves are returned unchanged.
func Value(v any) any {
	switch x := v.(type) {
	case string:
		return Text(x)
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = Text(s)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Value(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = Text(s)
		}
		return out
	}
	return v
}

// Record sanitizes every string field of rec in place.
func Record(rec *types.NormalizedRecord) {
	if rec == nil {
		return
	}
	rec.FullName = Text(rec.FullName)
	rec.Title = Text(rec.Title)
	rec.ProfileSummary = Text(rec.ProfileSummary)
	rec.Website = Text(rec.Website)
	for k, v := range rec.Contacts {
		rec.Contacts[k] = Text(v)
	}
	for i := range rec.Education {
		e := &rec.Education[i]
		e.Institution = Text(e.Institution)
		e.Degree = Text(e.Degree)
		e.Year = Text(e.Year)
	}
	for i := range rec.Languages {
		rec.Languages[i].Language = Text(rec.Languages[i].Language)
		rec.Languages[i].Level = Text(rec.Languages[i].Level)
	}
	texts(rec.Domains)
	for _, tools := range rec.HardSkills {
		texts(tools)
	}
	for i := range rec.SkillsOverview {
		row := &rec.SkillsOverview[i]
		row.Category = Text(row.Category)
		texts(row.Tools)
	}
	for i := range rec.Projects {
		p := &rec.Projects[i]
		p.ProjectTitle = Text(p.ProjectTitle)
		p.Company = Text(p.Company)
		p.Overview = Text(p.Overview)
		p.Role = Text(p.Role)
		p.Duration = Text(p.Duration)
		texts(p.Responsibilities)
		texts(p.TechStack)
		texts(p.Domains)
	}
}

func texts(ss []string) {
	for i, s := range ss {
		ss[i] = Text(s)
	}
}
