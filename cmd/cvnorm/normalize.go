// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cv-normalizer/internal/normalize"
	"github.com/pdiddy/cv-normalizer/internal/schema"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize one extracted CV record",
	Long: `Normalize reads a raw record (JSON or YAML) and, optionally, the CV
source text it was extracted from, and writes the canonical record to
--out or stdout. Missing required fields are logged as a warning.

With --register the record's domains are added to the domain registry.`,
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	recordPath, _ := cmd.Flags().GetString("record")
	sourcePath, _ := cmd.Flags().GetString("source")
	outPath, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	compact, _ := cmd.Flags().GetBool("compact")
	register, _ := cmd.Flags().GetBool("register")

	n, err := newNormalizer(cmd)
	if err != nil {
		return err
	}

	raw, err := normalize.ReadRecord(recordPath)
	if err != nil {
		return err
	}
	var source string
	if sourcePath != "" {
		if source, err = normalize.ReadSource(sourcePath); err != nil {
			return err
		}
	}

	rec, rep := n.NormalizeReport(raw, source)
	if len(rep.Missing) > 0 {
		log := logger(cmd)
		log.Warn().Str("record", recordPath).Strs("missing", rep.Missing).Msg("required fields missing")
	}

	if format == "" {
		format = formatFromPath(outPath)
	}
	data, err := normalize.Marshal(rec, format, compact)
	if err != nil {
		return err
	}
	if outPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	if register {
		return recordDomains(cmd, rec.Domains)
	}
	return nil
}

// formatFromPath picks json for .json paths and yaml otherwise.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return normalize.FormatJSON
	}
	return normalize.FormatYAML
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "List required fields missing from a record",
	Long: `Validate prints the required fields that are absent or empty in a
raw record, one per line. With --normalized the record is normalized first,
so only gaps the pipeline could not fill are reported.

Validate exits non-zero when any field is missing.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	recordPath, _ := cmd.Flags().GetString("record")
	normalized, _ := cmd.Flags().GetBool("normalized")

	raw, err := normalize.ReadRecord(recordPath)
	if err != nil {
		return err
	}

	var missing []string
	if normalized {
		n, err := newNormalizer(cmd)
		if err != nil {
			return err
		}
		missing = schema.Missing(n.Normalize(raw, ""))
	} else {
		missing = schema.MissingInRaw(raw)
	}

	if len(missing) == 0 {
		fmt.Println("All required fields present.")
		return nil
	}
	for _, f := range missing {
		fmt.Println(f)
	}
	return fmt.Errorf("%d required field(s) missing", len(missing))
}

func init() {
	normalizeCmd.Flags().String("record", "", "raw record file (.json, .yaml)")
	normalizeCmd.Flags().String("source", "", "CV source text file")
	normalizeCmd.Flags().String("out", "", "output file (default: stdout)")
	normalizeCmd.Flags().String("format", "", "output format: yaml or json (default: from --out extension)")
	normalizeCmd.Flags().Bool("compact", false, "omit empty fields")
	normalizeCmd.Flags().Bool("register", false, "add the record's domains to the registry")
	normalizeCmd.MarkFlagRequired("record")

	validateCmd.Flags().String("record", "", "raw record file (.json, .yaml)")
	validateCmd.Flags().Bool("normalized", false, "normalize before checking")
	validateCmd.MarkFlagRequired("record")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(validateCmd)
}
