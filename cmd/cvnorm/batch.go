// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cv-normalizer/internal/normalize"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Normalize every raw record in a directory",
	Long: `Batch normalizes each <id>.json or <id>.yaml in the input directory,
using <id>.txt as source text when present, and writes <id>.yaml to the
output directory. Records whose output is newer than their inputs are
skipped.

The domains of every record in the run are added to the domain registry
unless --no-register is given.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	noRegister, _ := cmd.Flags().GetBool("no-register")

	n, err := newNormalizer(cmd)
	if err != nil {
		return err
	}

	summary, err := normalize.NormalizeAll(cmd.Context(), n, cfg.Batch, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nnormalized: %d, skipped: %d, failed: %d\n",
		summary.Normalized, summary.Skipped, summary.Failed)

	if !noRegister {
		if err := recordDomains(cmd, summary.Domains); err != nil {
			return err
		}
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d record(s) failed normalization", summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("input-dir", "", "directory of raw records (default from config)")
	batchCmd.Flags().String("output-dir", "", "directory for normalized records (default from config)")
	batchCmd.Flags().Bool("no-register", false, "do not update the domain registry")

	viper.BindPFlag("batch.input_dir", batchCmd.Flags().Lookup("input-dir"))
	viper.BindPFlag("batch.output_dir", batchCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(batchCmd)
}
