// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured zerolog logger used by the client.
//
// The TUI owns the terminal, so logs normally go to a file. Components get a
// child logger tagged with their name:
//
//	log := logging.Init(logging.Options{Level: "debug", Output: f})
//	gw := gateway.New(url, auth, opts, logging.Component(log, "gateway"))
//
// Levels: trace, debug, info (default), warn, error.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	// Level is the minimum level. Unknown values mean info.
	Level string
	// Pretty selects the human-readable console format instead of JSON.
	Pretty bool
	// Output receives log lines. Nil discards everything.
	Output io.Writer
}

// Init builds a logger from opts.
func Init(opts Options) zerolog.Logger {
	if opts.Output == nil {
		return zerolog.Nop()
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog.Level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// OpenFile opens path for appending with owner-only permissions, creating the
// parent directory. The caller closes the file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Component returns a child logger tagged with name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
