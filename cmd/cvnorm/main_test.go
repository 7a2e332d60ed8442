// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cv-normalizer/internal/registry"
	"github.com/pdiddy/cv-normalizer/internal/store"
	"github.com/pdiddy/cv-normalizer/pkg/types"
)

func TestOpenRegistry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sc := types.StoreConfig{Dir: filepath.Join(dir, "index")}

	tests := []struct {
		name    string
		backend types.RegistryBackend
		check   func(t *testing.T, r registry.Registry)
	}{
		{"file", types.RegistryFile, func(t *testing.T, r registry.Registry) {
			assert.IsType(t, &registry.FileRegistry{}, r)
		}},
		{"empty defaults to file", "", func(t *testing.T, r registry.Registry) {
			assert.IsType(t, &registry.FileRegistry{}, r)
		}},
		{"sqlite", types.RegistrySQLite, func(t *testing.T, r registry.Registry) {
			assert.IsType(t, &store.Store{}, r)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := types.RegistryConfig{Backend: tt.backend, Path: filepath.Join(dir, tt.name+".json")}
			r, closeReg, err := openRegistry(ctx, rc, sc)
			require.NoError(t, err)
			defer closeReg()
			tt.check(t, r)

			got, err := registry.Record(ctx, r, []string{"retail"})
			require.NoError(t, err)
			assert.Contains(t, got, "Retail")
		})
	}
}

func TestOpenRegistryErrors(t *testing.T) {
	_, _, err := openRegistry(context.Background(), types.RegistryConfig{Backend: "etcd"}, types.StoreConfig{})
	assert.ErrorIs(t, err, registry.ErrUnknownBackend)

	_, _, err = openRegistry(context.Background(), types.RegistryConfig{Backend: types.RegistryRedis}, types.StoreConfig{})
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "json", formatFromPath("out.JSON"))
	assert.Equal(t, "yaml", formatFromPath("out.yaml"))
	assert.Equal(t, "yaml", formatFromPath(""))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "Münch...", clip("Münchener Rück", 8))
}
