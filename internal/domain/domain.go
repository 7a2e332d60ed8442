// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package domain infers industry labels for projects from a closed keyword
// dictionary. Technology and methodology terms are never industries.
package domain

import (
	"sort"
	"strings"

	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// Classifier assigns industry labels to projects.
type Classifier struct {
	tables *taxonomy.Tables
}

// NewClassifier returns a Classifier backed by tables.
func NewClassifier(tables *taxonomy.Tables) *Classifier {
	return &Classifier{tables: tables}
}

// Result explains how a project's domains were derived.
type Result struct {
	Domains  []string
	Accepted []string
	Rejected []string
	Inferred []string
}

// ClassifyProject returns the industry labels for p. Proposed values are
// kept only when they map onto the vocabulary; the project title, overview
// and tech stack are scanned for keywords. The result is a sorted set.
func (c *Classifier) ClassifyProject(p types.Project, proposed []string) []string {
	return c.Explain(p, proposed).Domains
}

// Explain is ClassifyProject with the accepted, rejected and inferred
// values reported separately.
func (c *Classifier) Explain(p types.Project, proposed []string) Result {
	var res Result
	for _, d := range proposed {
		if strings.TrimSpace(d) == "" {
			continue
		}
		if label, ok := c.tables.CanonicalDomain(d); ok {
			res.Accepted = append(res.Accepted, label)
			continue
		}
		res.Rejected = append(res.Rejected, d)
	}
	res.Inferred = c.tables.MatchDomains(projectText(p))

	res.Domains = SortedSet(append(append([]string{}, res.Accepted...), res.Inferred...))
	return res
}

// projectText joins the fields scanned for industry keywords.
func projectText(p types.Project) string {
	parts := []string{p.ProjectTitle, p.Overview}
	parts = append(parts, p.TechStack...)
	return strings.Join(parts, "\n")
}

// Aggregate returns the document-level domain set: the sorted union of all
// project domains.
func Aggregate(projects []types.Project) []string {
	var all []string
	for _, p := range projects {
		all = append(all, p.Domains...)
	}
	return SortedSet(all)
}

// SortedSet trims, deduplicates case-insensitively and sorts labels. The
// result is never nil.
func SortedSet(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := []string{}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := strings.ToLower(l)
		if l == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
