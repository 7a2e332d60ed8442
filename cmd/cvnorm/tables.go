// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Validate or print the classification tables",
	Long: `Tables works with the classification tables that drive skill
categories, vendor collapse, industry domains and language names. The
active tables are the embedded defaults unless --tables names a file.`,
}

var tablesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse and validate the active tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := taxonomy.Load(cfg.Normalize.TablesPath)
		if err != nil {
			return err
		}
		source := cfg.Normalize.TablesPath
		if source == "" {
			source = "embedded"
		}
		fmt.Printf("tables: %s\n", source)
		fmt.Printf("  categories:  %d\n", len(t.Categories))
		fmt.Printf("  rules:       %d\n", len(t.Rules))
		fmt.Printf("  rescue:      %d\n", len(t.Rescue))
		fmt.Printf("  collapse:    %d\n", len(t.Collapse))
		fmt.Printf("  domains:     %d\n", len(t.Domains))
		fmt.Printf("  forbidden:   %d\n", len(t.Forbidden))
		fmt.Printf("  languages:   %d\n", len(t.Languages))
		fmt.Printf("  proficiency: %d\n", len(t.Proficiency))
		return nil
	},
}

var tablesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the embedded tables as a starting point for overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stdout.Write(taxonomy.Embedded())
		return err
	},
}

func init() {
	tablesCmd.AddCommand(tablesCheckCmd)
	tablesCmd.AddCommand(tablesDumpCmd)

	rootCmd.AddCommand(tablesCmd)
}
