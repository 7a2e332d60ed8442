// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// QueryOptions holds parameters for project queries.
type QueryOptions struct {
	// Query is a full-text search over title, company, role, overview,
	// responsibilities and tech stack.
	Query string

	// Domain keeps projects tagged with this industry label.
	Domain string

	// Company keeps projects at this company, case-insensitively.
	Company string

	// RecordID keeps projects of one record.
	RecordID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Domain == "" && q.Company == "" && q.RecordID == ""
}

// ProjectResult is a stored project with its owning record.
type ProjectResult struct {
	types.Project `yaml:",inline"`
	RecordID      string `json:"record_id" yaml:"record_id"`
	FullName      string `json:"full_name" yaml:"full_name"`
	Position      int    `json:"position" yaml:"position"`
}

// RecordSummary is one row of the records table.
type RecordSummary struct {
	ID          string   `json:"id" yaml:"id"`
	FullName    string   `json:"full_name" yaml:"full_name"`
	Title       string   `json:"title" yaml:"title"`
	Domains     []string `json:"domains" yaml:"domains"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
}

// Projects searches the stored projects. Full-text queries are ranked by
// relevance; filter-only queries are ordered by record and position.
func (s *Store) Projects(ctx context.Context, opts QueryOptions) ([]ProjectResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != "" && s.fts
	)

	const cols = `p.record_id, p.position, p.title, p.company, p.role, p.duration,
		p.overview, p.responsibilities, p.domains, p.tech_stack, r.full_name`

	if useFTS {
		qb.WriteString(`SELECT ` + cols + `
			FROM projects_fts
			JOIN projects p ON p.rowid = projects_fts.rowid
			LEFT JOIN records r ON p.record_id = r.id
			WHERE projects_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + cols + `
			FROM projects p
			LEFT JOIN records r ON p.record_id = r.id
			WHERE 1=1`)
		if opts.Query != "" {
			for _, term := range strings.Fields(opts.Query) {
				qb.WriteString(` AND (p.title || ' ' || p.company || ' ' || p.role || ' ' ||
					p.overview || ' ' || p.responsibilities || ' ' || p.tech_stack) LIKE ?`)
				args = append(args, "%"+term+"%")
			}
		}
	}

	if opts.Domain != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(p.domains) WHERE value = ? COLLATE NOCASE)`)
		args = append(args, opts.Domain)
	}
	if opts.Company != "" {
		qb.WriteString(` AND p.company = ? COLLATE NOCASE`)
		args = append(args, opts.Company)
	}
	if opts.RecordID != "" {
		qb.WriteString(` AND p.record_id = ?`)
		args = append(args, opts.RecordID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY projects_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.record_id, p.position`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var results []ProjectResult
	for rows.Next() {
		var (
			pr                              ProjectResult
			title, company, role            sql.NullString
			duration, overview, resp        sql.NullString
			domainsJSON, techJSON, fullName sql.NullString
		)
		if err := rows.Scan(
			&pr.RecordID, &pr.Position, &title, &company, &role, &duration,
			&overview, &resp, &domainsJSON, &techJSON, &fullName,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		pr.ProjectTitle = title.String
		pr.Company = company.String
		pr.Role = role.String
		pr.Duration = duration.String
		pr.Overview = overview.String
		pr.Responsibilities = []string{}
		if resp.String != "" {
			pr.Responsibilities = strings.Split(resp.String, "\n")
		}
		pr.Domains = decodeList(domainsJSON)
		pr.TechStack = decodeList(techJSON)
		pr.FullName = fullName.String

		results = append(results, pr)
	}
	return results, rows.Err()
}

// Records lists the indexed records ordered by id.
func (s *Store) Records(ctx context.Context) ([]RecordSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, title, domains, fingerprint FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []RecordSummary
	for rows.Next() {
		var (
			rs                           RecordSummary
			fullName, title, fingerprint sql.NullString
			domainsJSON                  sql.NullString
		)
		if err := rows.Scan(&rs.ID, &fullName, &title, &domainsJSON, &fingerprint); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rs.FullName = fullName.String
		rs.Title = title.String
		rs.Fingerprint = fingerprint.String
		rs.Domains = decodeList(domainsJSON)
		out = append(out, rs)
	}
	return out, rows.Err()
}
