// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// lockPoll is how often a blocked writer retries the lock file.
var lockPoll = 25 * time.Millisecond

// fileDoc is the on-disk layout: {"domains": [...]}.
type fileDoc struct {
	Domains []string `json:"domains"`
}

// FileRegistry stores labels in a JSON file.
type FileRegistry struct {
	path        string
	lockTimeout time.Duration
}

// NewFileRegistry returns a registry backed by path. Writers wait up to
// lockTimeout for the lock file before failing with ErrLocked.
func NewFileRegistry(path string, lockTimeout time.Duration) *FileRegistry {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &FileRegistry{path: path, lockTimeout: lockTimeout}
}

// Path returns the registry file path.
func (r *FileRegistry) Path() string { return r.path }

// Load returns the stored labels. A missing file is an empty registry.
func (r *FileRegistry) Load(_ context.Context) ([]string, error) {
	return r.read()
}

// Save replaces the stored labels.
func (r *FileRegistry) Save(ctx context.Context, labels []string) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return r.write(Labels(labels))
}

// Merge adds labels under the file lock.
func (r *FileRegistry) Merge(ctx context.Context, labels []string) ([]string, error) {
	unlock, err := r.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := r.read()
	if err != nil {
		return nil, err
	}
	merged := Labels(append(current, labels...))
	if err := r.write(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *FileRegistry) read() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", r.path, err)
	}
	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding registry %s: %w", r.path, err)
	}
	return Labels(doc.Domains), nil
}

// write replaces the file through a temporary file and rename, so readers
// never see a partial document.
func (r *FileRegistry) write(labels []string) error {
	data, err := json.MarshalIndent(fileDoc{Domains: labels}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating registry directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp registry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing registry %s: %w", r.path, err)
	}
	return nil
}

// lock creates the lock file exclusively, retrying until the timeout or
// ctx expires.
func (r *FileRegistry) lock(ctx context.Context) (func(), error) {
	lockPath := r.path + ".lock"
	if dir := filepath.Dir(lockPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating registry directory: %w", err)
		}
	}

	deadline := time.Now().Add(r.lockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("creating lock %s: %w", lockPath, err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: %w", lockPath, ErrLocked)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPoll):
		}
	}
}
