// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes normalized CV records in SQLite for project
// search, export and the shared domain registry.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cv-normalizer/internal/normalize"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

const dbFile = "cvnorm.db"

// Store manages the record index database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int

	// fts is false when the SQLite build lacks the fts5 module; text
	// queries then fall back to LIKE matching.
	fts bool
}

// NewStore opens or creates cfg.Dir/cvnorm.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			fingerprint TEXT,
			full_name TEXT,
			title TEXT,
			domains TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT,
			company TEXT,
			role TEXT,
			duration TEXT,
			overview TEXT,
			responsibilities TEXT,
			domains TEXT,
			tech_stack TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_record_id ON projects(record_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_company ON projects(company COLLATE NOCASE)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			record_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS domains (
			label TEXT PRIMARY KEY COLLATE NOCASE
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='projects_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	cols := "title, company, role, overview, responsibilities, tech_stack"
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE projects_fts USING fts5(` + cols + `, content=projects, content_rowid=rowid)`,
		`CREATE TRIGGER projects_ai AFTER INSERT ON projects BEGIN
			INSERT INTO projects_fts(rowid, ` + cols + `)
			VALUES (new.rowid, new.title, new.company, new.role, new.overview, new.responsibilities, new.tech_stack);
		END`,
		`CREATE TRIGGER projects_ad AFTER DELETE ON projects BEGIN
			INSERT INTO projects_fts(projects_fts, rowid, ` + cols + `)
			VALUES ('delete', old.rowid, old.title, old.company, old.role, old.overview, old.responsibilities, old.tech_stack);
		END`,
		`CREATE TRIGGER projects_au AFTER UPDATE ON projects BEGIN
			INSERT INTO projects_fts(projects_fts, rowid, ` + cols + `)
			VALUES ('delete', old.rowid, old.title, old.company, old.role, old.overview, old.responsibilities, old.tech_stack);
			INSERT INTO projects_fts(rowid, ` + cols + `)
			VALUES (new.rowid, new.title, new.company, new.role, new.overview, new.responsibilities, new.tech_stack);
		END`,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning FTS setup: %w", err)
	}
	defer tx.Rollback()
	for i, stmt := range ftsStatements {
		if _, err := tx.Exec(stmt); err != nil {
			if i == 0 && strings.Contains(err.Error(), "no such module") {
				return nil
			}
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing FTS setup: %w", err)
	}
	s.fts = true
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest indexes the normalized records (<id>.yaml or <id>.json) in dir.
// Files whose modification time matches the last run are skipped. Each
// record's domains are added to the registry table in the same
// transaction. export.yaml is rewritten when anything changed.
func (s *Store) Ingest(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading normalized directory %s: %w", dir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE record_id = ?`, id,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", id)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		rec, err := normalize.ReadNormalized(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if err := s.ingestRecord(ctx, id, rec, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d projects)\n", id, len(rec.Projects))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d projects)\n", id, len(rec.Projects))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

func (s *Store) ingestRecord(ctx context.Context, id string, rec *types.NormalizedRecord, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("deleting old projects: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (id, fingerprint, full_name, title, domains)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			fingerprint=excluded.fingerprint, full_name=excluded.full_name,
			title=excluded.title, domains=excluded.domains`,
		id, rec.Fingerprint, rec.FullName, rec.Title, jsonList(rec.Domains),
	)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO projects (record_id, position, title, company, role, duration, overview, responsibilities, domains, tech_stack)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range rec.Projects {
		_, err := stmt.ExecContext(ctx,
			id, i, p.ProjectTitle, p.Company, p.Role, p.Duration, p.Overview,
			strings.Join(p.Responsibilities, "\n"), jsonList(p.Domains), jsonList(p.TechStack),
		)
		if err != nil {
			return fmt.Errorf("inserting project %d: %w", i, err)
		}
	}

	if err := addLabels(ctx, tx, rec.Domains); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (record_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(record_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		id, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// Remove deletes a record and its projects from the index.
func (s *Store) Remove(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM indexing_status WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("deleting indexing status: %w", err)
	}
	return tx.Commit()
}

func jsonList(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeList(raw sql.NullString) []string {
	out := []string{}
	if raw.Valid && raw.String != "" {
		json.Unmarshal([]byte(raw.String), &out)
	}
	return out
}
