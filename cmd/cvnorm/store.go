// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cv-normalizer/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the SQLite record index (ingest, projects, remove, export)",
	Long: `Store maintains a SQLite index of normalized records. Use subcommands
to ingest a directory of normalized records, search projects, or export
the index.`,
}

var storeIngestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index normalized records",
	Long: `Ingest reads normalized records (<id>.yaml or <id>.json) from dir,
defaulting to the batch output directory, and indexes them with their
projects. Unchanged files are skipped on later runs. Each record's
domains are added to the store's domain table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	dir := cfg.Batch.OutputDir
	if len(args) > 0 {
		dir = args[0]
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(cmd.Context(), dir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

var storeProjectsCmd = &cobra.Command{
	Use:   "projects [query]",
	Short: "Search indexed projects",
	Long: `Projects searches indexed projects by full text, domain, company or
record. Full-text results are ranked by relevance; filter-only results are
listed by record.`,
	RunE: runStoreProjects,
}

func runStoreProjects(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --domain, --company, or --record")
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Projects(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatProjects(results, jsonOutput)
}

func formatProjects(results []store.ProjectResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-20s  %-20s  %-20s  %s\n",
		"#", "Project", "Company", "Candidate", "Duration", "Domains")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-30s  %-20s  %-20s  %-20s  %s\n",
			i+1, clip(r.ProjectTitle, 30), clip(r.Company, 20), clip(r.FullName, 20),
			clip(r.Duration, 20), strings.Join(r.Domains, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d projects\n", len(results))
	return nil
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

var storeRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Drop records from the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, id := range args {
			if err := s.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("removed", id)
		}
		return nil
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes the domain table, the record list and the indexed
projects (or a filtered subset) to export.yaml or export.json in the store
directory. Supports the same filter flags as projects.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	switch format {
	case "yaml", "":
		err = s.ExportYAML(cmd.Context(), opts)
		format = "yaml"
	case "json":
		err = s.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", s.ExportPath(format))
	return nil
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	domain, _ := cmd.Flags().GetString("domain")
	company, _ := cmd.Flags().GetString("company")
	recordID, _ := cmd.Flags().GetString("record")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		Domain:     domain,
		Company:    company,
		RecordID:   recordID,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().String("domain", "", "filter by industry domain")
	cmd.Flags().String("company", "", "filter by company")
	cmd.Flags().String("record", "", "filter by record ID")
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "", "directory holding cvnorm.db (default from config)")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results")
	viper.BindPFlag("store.dir", storeCmd.PersistentFlags().Lookup("store-dir"))
	viper.BindPFlag("store.max_results", storeCmd.PersistentFlags().Lookup("max-results"))

	addFilterFlags(storeProjectsCmd)
	storeProjectsCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeProjectsCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeProjectsCmd)
	storeCmd.AddCommand(storeRemoveCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
