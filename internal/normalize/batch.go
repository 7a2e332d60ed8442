// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cv-normalizer/internal/domain"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// Output formats accepted by Marshal.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// recordExts are the raw record extensions picked up by NormalizeAll, in
// preference order when one ID has several.
var recordExts = []string{".json", ".yaml", ".yml"}

// BatchSummary holds counts from a batch normalization run.
type BatchSummary struct {
	Normalized int
	Skipped    int
	Failed     int

	// Domains is the sorted union of domains across every record in the
	// output directory touched by the run, skipped ones included.
	Domains []string
}

// Total returns the number of records processed.
func (s BatchSummary) Total() int {
	return s.Normalized + s.Skipped + s.Failed
}

// HasFailures reports whether any record failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// NormalizeAll normalizes every raw record in cfg.InputDir and writes
// <id>.yaml to cfg.OutputDir. A record's source text is read from <id>.txt
// next to it when present. Records whose output is newer than both inputs
// are skipped. Progress lines are written to w.
func NormalizeAll(ctx context.Context, n *Normalizer, cfg types.BatchConfig, w io.Writer) (BatchSummary, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	files, err := recordFiles(cfg.InputDir)
	if err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	var domains []string

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		id, recPath := f.id, f.path
		srcPath := filepath.Join(cfg.InputDir, id+".txt")
		outPath := filepath.Join(cfg.OutputDir, id+".yaml")

		changed, err := hasChanged(outPath, recPath, srcPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		if !changed {
			if prev, err := ReadNormalized(outPath); err == nil {
				domains = append(domains, prev.Domains...)
			}
			fmt.Fprintf(w, "skipped %s\n", id)
			summary.Skipped++
			continue
		}

		raw, err := ReadRecord(recPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		source, err := ReadSource(srcPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		rec, rep := n.NormalizeReport(raw, source)
		if len(rep.Missing) > 0 {
			n.log.Warn().Str("record", id).Strs("missing", rep.Missing).Msg("required fields empty")
		}

		if err := WriteFile(outPath, rec, FormatYAML, false); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", id, err)
			summary.Failed++
			continue
		}

		domains = append(domains, rec.Domains...)
		fmt.Fprintf(w, "normalized %s (%d projects, %d domains)\n", id, len(rec.Projects), len(rec.Domains))
		summary.Normalized++
	}

	summary.Domains = domain.SortedSet(domains)
	return summary, nil
}

// recordFile is the raw record chosen for one ID.
type recordFile struct {
	id   string
	path string
}

// recordFiles lists raw record files in dir, one per ID, sorted by ID.
func recordFiles(dir string) ([]recordFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	best := make(map[string]int)
	paths := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		rank := -1
		for i, e := range recordExts {
			if ext == e {
				rank = i
			}
		}
		if rank < 0 {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if r, ok := best[id]; ok && r <= rank {
			continue
		}
		best[id] = rank
		paths[id] = filepath.Join(dir, entry.Name())
	}

	out := make([]recordFile, 0, len(paths))
	for id, p := range paths {
		out = append(out, recordFile{id: id, path: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

// hasChanged reports whether any existing input is newer than outPath.
// Returns true if the output does not exist. Missing inputs other than the
// first are ignored.
func hasChanged(outPath string, inputs ...string) (bool, error) {
	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	for i, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			if os.IsNotExist(err) && i > 0 {
				continue
			}
			return false, fmt.Errorf("stat input %s: %w", in, err)
		}
		if info.ModTime().After(outInfo.ModTime()) {
			return true, nil
		}
	}
	return false, nil
}

// ReadRecord decodes a raw extractor record from a JSON or YAML file,
// chosen by extension.
func ReadRecord(path string) (types.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", path, err)
	}
	raw, err := DecodeRecord(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", path, err)
	}
	return raw, nil
}

// DecodeRecord decodes a raw record. ext selects YAML for ".yaml" or
// ".yml"; anything else is read as JSON.
func DecodeRecord(data []byte, ext string) (types.RawRecord, error) {
	raw := types.RawRecord{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// ReadSource returns the source text at path, or "" when the file does
// not exist.
func ReadSource(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading source %s: %w", path, err)
	}
	return string(data), nil
}

// ReadNormalized loads a normalized record written by WriteFile.
func ReadNormalized(path string) (*types.NormalizedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading normalized record %s: %w", path, err)
	}
	var rec types.NormalizedRecord
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &rec)
	} else {
		err = yaml.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding normalized record %s: %w", path, err)
	}
	return &rec, nil
}

// Marshal encodes rec as YAML or JSON. compact drops empty fields.
func Marshal(rec *types.NormalizedRecord, format string, compact bool) ([]byte, error) {
	var doc any = rec
	if compact {
		c, err := Compact(rec)
		if err != nil {
			return nil, err
		}
		doc = c
	}

	switch strings.ToLower(format) {
	case "", FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshaling yaml: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling json: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// WriteFile marshals rec and writes it to path.
func WriteFile(path string, rec *types.NormalizedRecord, format string, compact bool) error {
	data, err := Marshal(rec, format, compact)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
