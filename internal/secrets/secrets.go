// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed
// contents are the value.
//
// Recognized keys: redis-password, redis-addr.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

const (
	// RedisPassword authenticates the redis registry backend.
	RedisPassword = "redis-password"

	// RedisAddr overrides the configured redis address.
	RedisAddr = "redis-addr"
)

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty map. Unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Apply fills registry credentials from s. Values already set in cfg win.
func Apply(cfg *types.Config, s map[string]string) {
	if cfg.Registry.RedisPassword == "" {
		cfg.Registry.RedisPassword = s[RedisPassword]
	}
	if cfg.Registry.RedisAddr == "" {
		cfg.Registry.RedisAddr = s[RedisAddr]
	}
}
