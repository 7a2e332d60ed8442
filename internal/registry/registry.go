// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry persists the set of industry labels discovered across
// normalized records. The pipeline never touches it directly; hosts record
// the domains of each normalized record through Record.
//
// Adapters serialize concurrent writers themselves: the file adapter with a
// lock file and atomic rename, the Redis adapter with set commands, and the
// SQLite adapter in internal/store with a transaction.
package registry

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
)

var (
	// ErrLocked is returned when the file lock cannot be taken in time.
	ErrLocked = errors.New("registry locked by another writer")

	// ErrUnknownBackend is returned for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown registry backend")
)

// Registry loads and replaces the persisted label set.
type Registry interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, labels []string) error
}

// Merger is implemented by registries that can add labels atomically.
// Merge returns the full label set after the addition.
type Merger interface {
	Merge(ctx context.Context, labels []string) ([]string, error)
}

// Labels title-cases, deduplicates case-insensitively and sorts labels.
// The result is never nil.
func Labels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := []string{}
	for _, l := range labels {
		l = taxonomy.TitleCase(l)
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

// Record adds labels to r and returns the resulting set. Registries that
// implement Merger merge atomically; others fall back to load, union and
// save, which callers must not run concurrently against the same store.
func Record(ctx context.Context, r Registry, labels []string) ([]string, error) {
	if m, ok := r.(Merger); ok {
		return m.Merge(ctx, labels)
	}
	current, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	merged := Labels(append(current, labels...))
	if err := r.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
