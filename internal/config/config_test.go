// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoadDir_DefaultsWhenEmpty(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadDir(dir, envconfig.MapLookuper(nil))
	require.NoError(t, err)

	require.Equal(t, "http://localhost:5000", cfg.Server.URL)
	require.Equal(t, 900, cfg.Session.TimeoutSeconds)
	require.Equal(t, time.Second, cfg.Session.Tick())
	require.Equal(t, 30*time.Second, cfg.Session.Resync())
	require.Equal(t, 2*time.Second, cfg.Session.Grace())
	require.Equal(t, 120, cfg.Session.WarningSeconds)
	require.Equal(t, 100, cfg.UI.CollapseBelow)
	require.Equal(t, 5*time.Second, cfg.UI.Toast())
	require.Equal(t, filepath.Join(dir, "session.json"), cfg.Paths.SessionFile)
	require.Equal(t, filepath.Join(dir, "eduportal.log"), cfg.Logging.File)
}

func TestLoadDir_TOMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PathTOML(dir), []byte(`
[server]
url = "https://portal.example.edu"
burst = 5

[session]
resync_seconds = 10

[ui]
theme = "dark"
`), 0644))

	cfg, err := LoadDir(dir, envconfig.MapLookuper(map[string]string{
		"EDUPORTAL_THEME":     "light",
		"EDUPORTAL_LOG_LEVEL": "debug",
	}))
	require.NoError(t, err)

	require.Equal(t, "https://portal.example.edu", cfg.Server.URL)
	require.Equal(t, 5, cfg.Server.Burst)
	require.Equal(t, 10, cfg.Session.ResyncSeconds)
	require.Equal(t, 1, cfg.Session.TickSeconds, "unset keys keep defaults")
	require.Equal(t, "light", cfg.UI.Theme, "env wins over file")
	require.Equal(t, "debug", cfg.Logging.Level)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(PathTOML(dir))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestLoadDir_JSONFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PathJSON(dir),
		[]byte(`{"server":{"url":"http://10.0.0.5:8080"},"paths":{"session_file":"/tmp/s.json"}}`), 0600))

	cfg, err := LoadDir(dir, nil)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5:8080", cfg.Server.URL)
	require.Equal(t, "/tmp/s.json", cfg.Paths.SessionFile)
}

func TestLoadDir_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PathTOML(dir), []byte("[server\nurl="), 0600))

	_, err := LoadDir(dir, nil)
	require.Error(t, err)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://x" }, "server.url"},
		{"no host", func(c *Config) { c.Server.URL = "http://" }, "server.url"},
		{"zero rps", func(c *Config) { c.Server.RequestsPerSecond = 0 }, "server.requests_per_second"},
		{"resync below tick", func(c *Config) { c.Session.TickSeconds = 5; c.Session.ResyncSeconds = 2 }, "session.resync_seconds"},
		{"warning past timeout", func(c *Config) { c.Session.WarningSeconds = 900 }, "session.warning_seconds"},
		{"theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

// =============================================================================
// SAVE / INIT / GET / SET TESTS
// =============================================================================

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Server.URL = "https://school.example"
	cfg.UI.Theme = "dark"
	require.NoError(t, Save(cfg, PathTOML(dir)))

	loaded, err := LoadDir(dir, nil)
	require.NoError(t, err)
	require.Equal(t, "https://school.example", loaded.Server.URL)
	require.Equal(t, "dark", loaded.UI.Theme)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path, err := Init(dir)
	require.NoError(t, err)
	require.FileExists(t, path)

	_, err = Init(dir)
	require.ErrorIs(t, err, ErrExists)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("server.url")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", v)

	require.NoError(t, cfg.Set("session.resync_seconds", "45"))
	require.Equal(t, 45, cfg.Session.ResyncSeconds)
	require.NoError(t, cfg.Set("server.requests_per_second", "2.5"))
	require.Equal(t, 2.5, cfg.Server.RequestsPerSecond)
	require.NoError(t, cfg.Set("logging.pretty", "true"))
	require.True(t, cfg.Logging.Pretty)

	require.Error(t, cfg.Set("session.resync_seconds", "soon"))
	_, err = cfg.Get("server")
	require.Error(t, err)
	_, err = cfg.Get("nope.url")
	require.Error(t, err)
	_, err = cfg.Get("server.nope")
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, "server.url")
	require.Contains(t, keys, "session.grace_seconds")
	require.Contains(t, keys, "paths.export_dir")
	require.Equal(t, "server.url", keys[0])
}
