//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups targets that run the built CLI over records/.
type Pipeline mg.Namespace

func cvnorm(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Normalize runs a batch over records/raw into records/normalized.
func (Pipeline) Normalize() error {
	mg.Deps(Build, Init)
	return cvnorm("batch")
}

// Index ingests records/normalized into the SQLite store.
func (Pipeline) Index() error {
	mg.Deps(Pipeline{}.Normalize)
	return cvnorm("store", "ingest")
}

// Domains prints the domain registry.
func (Pipeline) Domains() error {
	mg.Deps(Build)
	return cvnorm("domains", "list")
}
