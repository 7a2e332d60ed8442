// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the zerolog logger shared by the CLI and the
// normalization pipeline. Log output goes to stderr so normalized records
// written to stdout stay machine-readable.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// Format names accepted in LogConfig.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Nop discards everything. Libraries fall back to it when no logger is
// configured.
var Nop = zerolog.Nop()

// New builds a logger writing to w. An unknown level falls back to info;
// any format other than json selects the console writer.
func New(cfg types.LogConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(cfg.Format, FormatJSON) {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    w != os.Stderr || os.Getenv("NO_COLOR") != "",
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

type contextKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to ctx, or Nop.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(zerolog.Logger); ok {
			return l
		}
	}
	return Nop
}
