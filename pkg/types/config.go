// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CollapsePolicy selects how vendor synonym groups in hard skills are treated.
type CollapsePolicy string

const (
	// CollapseVendors rewrites every mention of a vendor group to its
	// canonical label, so "Azure Functions" and "Azure" both become
	// "Microsoft Azure".
	CollapseVendors CollapsePolicy = "collapse"

	// PreserveVendors keeps every distinct vendor mention as extracted.
	PreserveVendors CollapsePolicy = "preserve"
)

// NormalizeConfig holds settings for the normalization pipeline.
type NormalizeConfig struct {
	// TablesPath is an optional YAML file replacing the embedded
	// classification tables.
	TablesPath string `json:"tables_path,omitempty" yaml:"tables_path,omitempty" mapstructure:"tables_path"`

	// Collapse selects the vendor collapse policy (default collapse).
	Collapse CollapsePolicy `json:"collapse" yaml:"collapse" mapstructure:"collapse"`

	// PivotYear resolves two-digit years: values at or below it are 20xx,
	// values above it are 19xx (default 30).
	PivotYear int `json:"pivot_year" yaml:"pivot_year" mapstructure:"pivot_year"`

	// MaxResponsibilityWords truncates each responsibility to this many
	// words. Zero disables truncation.
	MaxResponsibilityWords int `json:"max_responsibility_words" yaml:"max_responsibility_words" mapstructure:"max_responsibility_words"`

	// KeepEmptyProjects retains projects with no title, company, overview
	// or responsibilities.
	KeepEmptyProjects bool `json:"keep_empty_projects" yaml:"keep_empty_projects" mapstructure:"keep_empty_projects"`
}

// RegistryBackend identifies where the domain registry is persisted.
type RegistryBackend string

const (
	RegistryFile   RegistryBackend = "file"
	RegistrySQLite RegistryBackend = "sqlite"
	RegistryRedis  RegistryBackend = "redis"
)

// RegistryConfig holds settings for the persisted domain registry.
type RegistryConfig struct {
	// Backend selects the store: file, sqlite, or redis.
	Backend RegistryBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the registry file for the file backend (default domains.json).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// LockTimeout bounds how long the file backend waits for its lock.
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout" mapstructure:"lock_timeout"`

	// RedisAddr is host:port of the Redis server for the redis backend.
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`

	// RedisPassword authenticates to Redis. Usually loaded from .secrets/.
	RedisPassword string `json:"-" yaml:"-" mapstructure:"redis_password"`

	// RedisDB selects the Redis logical database.
	RedisDB int `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`

	// RedisKey is the set key holding the labels (default cvnorm:domains).
	RedisKey string `json:"redis_key" yaml:"redis_key" mapstructure:"redis_key"`
}

// BatchConfig holds settings for directory-wide normalization.
type BatchConfig struct {
	// InputDir contains raw records (<id>.json or <id>.yaml) and optional
	// source texts (<id>.txt).
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir receives normalized records as <id>.yaml.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// StoreConfig holds settings for the SQLite record store.
type StoreConfig struct {
	// Dir contains the database file cvnorm.db and export files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the cvnorm CLI.
type Config struct {
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
	Registry  RegistryConfig  `json:"registry" yaml:"registry" mapstructure:"registry"`
	Batch     BatchConfig     `json:"batch" yaml:"batch" mapstructure:"batch"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Normalize: NormalizeConfig{
			Collapse:  CollapseVendors,
			PivotYear: 30,
		},
		Registry: RegistryConfig{
			Backend:     RegistryFile,
			Path:        "domains.json",
			LockTimeout: 5 * time.Second,
			RedisKey:    "cvnorm:domains",
		},
		Batch: BatchConfig{
			InputDir:  "records/raw",
			OutputDir: "records/normalized",
		},
		Store: StoreConfig{
			Dir:        "records/index",
			MaxResults: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
