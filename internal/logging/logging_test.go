// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"off":     zerolog.Disabled,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInit_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(Init(Options{Level: "info", Output: &buf}), "session")

	log.Debug().Msg("hidden")
	log.Info().Str("event", "session_resync").Int("remaining", 840).Msg("resynced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "session", entry["component"])
	require.Equal(t, "session_resync", entry["event"])
	require.EqualValues(t, 840, entry["remaining"])
	require.Contains(t, entry, "time")
}

func TestInit_NilOutputDiscards(t *testing.T) {
	log := Init(Options{})
	require.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "eduportal.log")
	f, err := OpenFile(path)
	require.NoError(t, err)

	logger := Init(Options{Output: f})
	logger.Info().Msg("hello")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}
