// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cvnorm CLI, a thin host around the
// normalization pipeline, the record store and the domain registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cv-normalizer/internal/logging"
	"github.com/pdiddy/cv-normalizer/internal/normalize"
	"github.com/pdiddy/cv-normalizer/internal/registry"
	"github.com/pdiddy/cv-normalizer/internal/secrets"
	"github.com/pdiddy/cv-normalizer/internal/store"
	"github.com/pdiddy/cv-normalizer/internal/taxonomy"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg holds the settings resolved by PersistentPreRunE.
var cfg = types.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "cvnorm",
	Short: "Normalize extracted CV records into a canonical schema",
	Long: `cvnorm reconciles loosely-typed CV records produced by an extraction
model, together with the CV source text, into a canonical record: date
ranges in one format, hard skills in a fixed category vocabulary, one
proficiency per language and industry domains drawn from projects.

Records can be normalized one at a time or as a directory batch, indexed
in a SQLite store for project search, and their domains collected in a
shared registry.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}

		logger := logging.New(cfg.Log, os.Stderr)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("path", used).Msg("using config file")
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		secrets.Apply(&cfg, s)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}

		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./cvnorm.yaml or ~/.config/cvnorm/cvnorm.yaml)")
	flags.String("secrets-dir", ".secrets", "directory of credential files")
	flags.String("tables", "", "classification tables YAML (default: embedded tables)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")

	viper.BindPFlag("normalize.tables_path", flags.Lookup("tables"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))

	setDefaults(types.DefaultConfig())
}

// setDefaults registers every configuration key so that environment
// variables are honoured by viper.Unmarshal.
func setDefaults(d types.Config) {
	viper.SetDefault("normalize.tables_path", d.Normalize.TablesPath)
	viper.SetDefault("normalize.collapse", string(d.Normalize.Collapse))
	viper.SetDefault("normalize.pivot_year", d.Normalize.PivotYear)
	viper.SetDefault("normalize.max_responsibility_words", d.Normalize.MaxResponsibilityWords)
	viper.SetDefault("normalize.keep_empty_projects", d.Normalize.KeepEmptyProjects)

	viper.SetDefault("registry.backend", string(d.Registry.Backend))
	viper.SetDefault("registry.path", d.Registry.Path)
	viper.SetDefault("registry.lock_timeout", d.Registry.LockTimeout)
	viper.SetDefault("registry.redis_addr", d.Registry.RedisAddr)
	viper.SetDefault("registry.redis_password", d.Registry.RedisPassword)
	viper.SetDefault("registry.redis_db", d.Registry.RedisDB)
	viper.SetDefault("registry.redis_key", d.Registry.RedisKey)

	viper.SetDefault("batch.input_dir", d.Batch.InputDir)
	viper.SetDefault("batch.output_dir", d.Batch.OutputDir)

	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("store.max_results", d.Store.MaxResults)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cvnorm")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cvnorm"))
		}
	}

	viper.SetEnvPrefix("CVNORM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// logger returns the command's logger.
func logger(cmd *cobra.Command) zerolog.Logger {
	return logging.FromContext(cmd.Context())
}

// newNormalizer loads the configured tables and builds the pipeline.
func newNormalizer(cmd *cobra.Command) (*normalize.Normalizer, error) {
	tables, err := taxonomy.Load(cfg.Normalize.TablesPath)
	if err != nil {
		return nil, err
	}
	return normalize.New(tables, cfg.Normalize, logger(cmd))
}

// openRegistry returns the configured registry backend and a function
// releasing its resources.
func openRegistry(ctx context.Context, rc types.RegistryConfig, sc types.StoreConfig) (registry.Registry, func(), error) {
	switch rc.Backend {
	case types.RegistryFile, "":
		return registry.NewFileRegistry(rc.Path, rc.LockTimeout), func() {}, nil
	case types.RegistrySQLite:
		s, err := store.NewStore(sc)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case types.RegistryRedis:
		r, err := registry.DialRedis(ctx, rc)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%q: %w", rc.Backend, registry.ErrUnknownBackend)
}

// recordDomains adds labels to the configured registry and logs the result.
func recordDomains(cmd *cobra.Command, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	reg, closeReg, err := openRegistry(cmd.Context(), cfg.Registry, cfg.Store)
	if err != nil {
		return err
	}
	defer closeReg()

	all, err := registry.Record(cmd.Context(), reg, labels)
	if err != nil {
		return fmt.Errorf("updating domain registry: %w", err)
	}
	log := logger(cmd)
	log.Info().
		Str("backend", string(cfg.Registry.Backend)).
		Strs("added", labels).
		Int("total", len(all)).
		Msg("domain registry updated")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
