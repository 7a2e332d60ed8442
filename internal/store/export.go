// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Domains  []string        `json:"domains" yaml:"domains"`
	Records  []RecordSummary `json:"records" yaml:"records"`
	Projects []ProjectResult `json:"projects" yaml:"projects"`
}

const exportLimit = 100000

// ExportYAML writes the index to <dir>/export.yaml.
// Projects are filtered like Projects.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(s.ExportPath("yaml"), data, 0o644)
}

// ExportJSON writes the index to <dir>/export.json. Projects are filtered
// like Projects.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(s.ExportPath("json"), data, 0o644)
}

// ExportPath returns the export file path for format (yaml or json).
func (s *Store) ExportPath(format string) string {
	return filepath.Join(s.dir, "export."+format)
}

func (s *Store) export(ctx context.Context, opts QueryOptions) (*Export, error) {
	opts.MaxResults = exportLimit
	projects, err := s.Projects(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	domains, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []ProjectResult{}
	}
	if records == nil {
		records = []RecordSummary{}
	}
	return &Export{Domains: domains, Records: records, Projects: projects}, nil
}
