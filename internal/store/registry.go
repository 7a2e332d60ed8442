// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdiddy/cv-normalizer/internal/registry"
)

var (
	_ registry.Registry = (*Store)(nil)
	_ registry.Merger   = (*Store)(nil)
)

// Load returns the labels in the domains table.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	return loadLabels(ctx, s.db)
}

// Save replaces the domains table with labels.
func (s *Store) Save(ctx context.Context, labels []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM domains`); err != nil {
		return fmt.Errorf("clearing domains: %w", err)
	}
	if err := addLabels(ctx, tx, labels); err != nil {
		return err
	}
	return tx.Commit()
}

// Merge adds labels to the domains table and returns the full set.
func (s *Store) Merge(ctx context.Context, labels []string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := addLabels(ctx, tx, labels); err != nil {
		return nil, err
	}
	merged, err := loadLabels(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing domains: %w", err)
	}
	return merged, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadLabels(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT label FROM domains`)
	if err != nil {
		return nil, fmt.Errorf("reading domains: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scanning domain: %w", err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return registry.Labels(labels), nil
}

func addLabels(ctx context.Context, tx *sql.Tx, labels []string) error {
	for _, l := range registry.Labels(labels) {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO domains (label) VALUES (?)`, l); err != nil {
			return fmt.Errorf("adding domain %s: %w", l, err)
		}
	}
	return nil
}
