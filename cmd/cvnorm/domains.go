// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cv-normalizer/internal/registry"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Inspect or extend the domain registry",
	Long: `Domains reads and extends the registry of industry labels collected
from normalized records. The backend (file, sqlite or redis) is chosen by
registry.backend in the configuration.`,
}

var domainsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the registered domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closeReg, err := openRegistry(cmd.Context(), cfg.Registry, cfg.Store)
		if err != nil {
			return err
		}
		defer closeReg()

		labels, err := reg.Load(cmd.Context())
		if err != nil {
			return err
		}
		for _, l := range labels {
			fmt.Println(l)
		}
		return nil
	},
}

var domainsAddCmd = &cobra.Command{
	Use:   "add <label>...",
	Short: "Add labels to the registry",
	Long: `Add registers one or more industry labels. Labels outside the
industry vocabulary are rejected unless --force is given; forbidden
technical terms are always rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDomainsAdd,
}

func runDomainsAdd(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	tables, err := taxonomy.Load(cfg.Normalize.TablesPath)
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(args))
	for _, a := range args {
		if tables.IsForbiddenDomain(a) {
			return fmt.Errorf("%q is a technical term, not an industry", a)
		}
		canonical, ok := tables.CanonicalDomain(a)
		switch {
		case ok:
			labels = append(labels, canonical)
		case force:
			labels = append(labels, a)
		default:
			return fmt.Errorf("%q is not in the industry vocabulary (use --force to add it anyway)", a)
		}
	}

	reg, closeReg, err := openRegistry(cmd.Context(), cfg.Registry, cfg.Store)
	if err != nil {
		return err
	}
	defer closeReg()

	all, err := registry.Record(cmd.Context(), reg, labels)
	if err != nil {
		return err
	}
	fmt.Printf("registered: %d domain(s), %d total\n", len(registry.Labels(labels)), len(all))
	return nil
}

func init() {
	domainsCmd.PersistentFlags().String("backend", "", "registry backend: file, sqlite or redis (default from config)")
	domainsCmd.PersistentFlags().String("registry-path", "", "registry file for the file backend (default from config)")
	viper.BindPFlag("registry.backend", domainsCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("registry.path", domainsCmd.PersistentFlags().Lookup("registry-path"))

	domainsAddCmd.Flags().Bool("force", false, "accept labels outside the industry vocabulary")

	domainsCmd.AddCommand(domainsListCmd)
	domainsCmd.AddCommand(domainsAddCmd)

	rootCmd.AddCommand(domainsCmd)
}
