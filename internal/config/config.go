// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"

	"github.com/jeranaias/eduportal-tui/internal/util"
)

// HomeEnv overrides the configuration directory.
const HomeEnv = "EDUPORTAL_HOME"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" json:"server"`
	Session SessionConfig `toml:"session" json:"session"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Paths   PathsConfig   `toml:"paths" json:"paths"`
}

// ServerConfig describes the portal server.
type ServerConfig struct {
	// URL is the portal base URL, e.g. "http://localhost:5000".
	URL string `toml:"url" json:"url" env:"EDUPORTAL_SERVER_URL, overwrite"`
	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" env:"EDUPORTAL_SERVER_TIMEOUT, overwrite"`
	// RequestsPerSecond limits outbound calls; Burst is the bucket size.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second" env:"EDUPORTAL_SERVER_RPS, overwrite"`
	Burst             int     `toml:"burst" json:"burst" env:"EDUPORTAL_SERVER_BURST, overwrite"`
}

// SessionConfig drives the session countdown.
type SessionConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" env:"EDUPORTAL_SESSION_TIMEOUT, overwrite"`
	TickSeconds    int `toml:"tick_seconds" json:"tick_seconds"`
	ResyncSeconds  int `toml:"resync_seconds" json:"resync_seconds" env:"EDUPORTAL_SESSION_RESYNC, overwrite"`
	WarningSeconds int `toml:"warning_seconds" json:"warning_seconds"`
	GraceSeconds   int `toml:"grace_seconds" json:"grace_seconds"`
}

// UIConfig controls the terminal interface.
type UIConfig struct {
	// Theme is "light", "dark" or "auto".
	Theme string `toml:"theme" json:"theme" env:"EDUPORTAL_THEME, overwrite"`
	// CollapseBelow is the width in columns under which the sidebar collapses
	// after navigation.
	CollapseBelow int `toml:"collapse_below" json:"collapse_below"`
	ToastSeconds  int `toml:"toast_seconds" json:"toast_seconds"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level" env:"EDUPORTAL_LOG_LEVEL, overwrite"`
	File   string `toml:"file" json:"file" env:"EDUPORTAL_LOG_FILE, overwrite"`
	Pretty bool   `toml:"pretty" json:"pretty"`
}

// PathsConfig locates client-side files.
type PathsConfig struct {
	SessionFile string `toml:"session_file" json:"session_file" env:"EDUPORTAL_SESSION_FILE, overwrite"`
	ExportDir   string `toml:"export_dir" json:"export_dir" env:"EDUPORTAL_EXPORT_DIR, overwrite"`
}

// Tick returns the countdown step.
func (s SessionConfig) Tick() time.Duration { return time.Duration(s.TickSeconds) * time.Second }

// Resync returns the interval between authoritative syncs.
func (s SessionConfig) Resync() time.Duration { return time.Duration(s.ResyncSeconds) * time.Second }

// Grace returns the delay between expiry and logout.
func (s SessionConfig) Grace() time.Duration { return time.Duration(s.GraceSeconds) * time.Second }

// Timeout returns the request timeout.
func (s ServerConfig) Timeout() time.Duration { return time.Duration(s.TimeoutSeconds) * time.Second }

// Toast returns how long notifications stay visible.
func (u UIConfig) Toast() time.Duration { return time.Duration(u.ToastSeconds) * time.Second }

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values. Paths are left empty and
// resolved against the config directory on load.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "http://localhost:5000",
			TimeoutSeconds:    15,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Session: SessionConfig{
			TimeoutSeconds: 900,
			TickSeconds:    1,
			ResyncSeconds:  30,
			WarningSeconds: 120,
			GraceSeconds:   2,
		},
		UI: UIConfig{
			Theme:         "auto",
			CollapseBelow: 100,
			ToastSeconds:  5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the configuration directory: $EDUPORTAL_HOME or ~/.eduportal.
func Dir() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".eduportal"), nil
}

// PathTOML returns the TOML config path inside dir.
func PathTOML(dir string) string { return filepath.Join(dir, "config.toml") }

// PathJSON returns the JSON config path inside dir.
func PathJSON(dir string) string { return filepath.Join(dir, "config.json") }

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration from Dir with process environment overrides.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir, envconfig.OsLookuper())
}

// LoadDir reads config.toml, or config.json when no TOML file exists, from
// dir. Missing files mean defaults. Overrides from env are applied last.
func LoadDir(dir string, env envconfig.Lookuper) (*Config, error) {
	cfg := Default()

	switch {
	case fileExists(PathTOML(dir)):
		if err := LoadTOML(cfg, PathTOML(dir)); err != nil {
			return nil, err
		}
	case fileExists(PathJSON(dir)):
		if err := LoadJSON(cfg, PathJSON(dir)); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays EDUPORTAL_* variables from env. Unset variables leave the
// current values alone.
func (c *Config) ApplyEnv(env envconfig.Lookuper) error {
	if env == nil {
		return nil
	}
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   c,
		Lookuper: env,
	}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values with defaults.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Server.URL == "" {
		cfg.Server.URL = d.Server.URL
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = d.Server.TimeoutSeconds
	}
	if cfg.Server.RequestsPerSecond == 0 {
		cfg.Server.RequestsPerSecond = d.Server.RequestsPerSecond
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = d.Server.Burst
	}

	if cfg.Session.TimeoutSeconds == 0 {
		cfg.Session.TimeoutSeconds = d.Session.TimeoutSeconds
	}
	if cfg.Session.TickSeconds == 0 {
		cfg.Session.TickSeconds = d.Session.TickSeconds
	}
	if cfg.Session.ResyncSeconds == 0 {
		cfg.Session.ResyncSeconds = d.Session.ResyncSeconds
	}
	if cfg.Session.WarningSeconds == 0 {
		cfg.Session.WarningSeconds = d.Session.WarningSeconds
	}
	if cfg.Session.GraceSeconds == 0 {
		cfg.Session.GraceSeconds = d.Session.GraceSeconds
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if cfg.UI.CollapseBelow == 0 {
		cfg.UI.CollapseBelow = d.UI.CollapseBelow
	}
	if cfg.UI.ToastSeconds == 0 {
		cfg.UI.ToastSeconds = d.UI.ToastSeconds
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
}

// resolvePaths makes the file locations absolute under dir.
func (c *Config) resolvePaths(dir string) {
	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		return p
	}
	c.Paths.SessionFile = resolve(c.Paths.SessionFile, "session.json")
	c.Paths.ExportDir = resolve(c.Paths.ExportDir, "exports")
	c.Logging.File = resolve(c.Logging.File, "eduportal.log")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg as TOML to path with 0600 permissions.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# eduportal configuration file\n")
	buf.WriteString("# Environment variables (EDUPORTAL_*) override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.Server.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("server.url", "invalid URL '%s', must be http(s)://host[:port]", c.Server.URL)
	}
	if c.Server.TimeoutSeconds < 1 || c.Server.TimeoutSeconds > 300 {
		add("server.timeout_seconds", "must be between 1 and 300, got %d", c.Server.TimeoutSeconds)
	}
	if c.Server.RequestsPerSecond <= 0 {
		add("server.requests_per_second", "must be positive, got %g", c.Server.RequestsPerSecond)
	}
	if c.Server.Burst < 1 {
		add("server.burst", "must be at least 1, got %d", c.Server.Burst)
	}

	if c.Session.TimeoutSeconds < 60 {
		add("session.timeout_seconds", "must be at least 60, got %d", c.Session.TimeoutSeconds)
	}
	if c.Session.TickSeconds < 1 {
		add("session.tick_seconds", "must be at least 1, got %d", c.Session.TickSeconds)
	}
	if c.Session.ResyncSeconds < c.Session.TickSeconds {
		add("session.resync_seconds", "must not be shorter than tick_seconds (%d), got %d",
			c.Session.TickSeconds, c.Session.ResyncSeconds)
	}
	if c.Session.WarningSeconds < 0 || c.Session.WarningSeconds >= c.Session.TimeoutSeconds {
		add("session.warning_seconds", "must be between 0 and timeout_seconds, got %d", c.Session.WarningSeconds)
	}
	if c.Session.GraceSeconds < 0 || c.Session.GraceSeconds > 60 {
		add("session.grace_seconds", "must be between 0 and 60, got %d", c.Session.GraceSeconds)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "light", "dark", "auto":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: light, dark, auto", c.UI.Theme)
	}
	if c.UI.CollapseBelow < 0 {
		add("ui.collapse_below", "must not be negative, got %d", c.UI.CollapseBelow)
	}
	if c.UI.ToastSeconds < 1 {
		add("ui.toast_seconds", "must be at least 1, got %d", c.UI.ToastSeconds)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "off":
	default:
		add("logging.level", "invalid level '%s'", c.Logging.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dotted TOML key such as "server.url".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value given as text to a dotted TOML key.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", key, value)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", key, value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s: unsupported type %s", key, field.Type())
	}
	return nil
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(strings.TrimSpace(key), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return reflect.Value{}, fmt.Errorf("invalid key %q, expected section.name", key)
	}
	section, ok := fieldByTag(reflect.ValueOf(c).Elem(), parts[0])
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown section: %s", parts[0])
	}
	field, ok := fieldByTag(section, parts[1])
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown key: %s", key)
	}
	return field, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlName(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return name
}

// Keys returns every dotted key in declaration order.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, tomlName(section)+"."+tomlName(section.Type.Field(j)))
		}
	}
	return keys
}

// String renders the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// ErrExists is returned by Init when a config file is already present.
var ErrExists = errors.New("config file already exists")

// Init writes the default configuration to dir unless one exists.
func Init(dir string) (string, error) {
	path := PathTOML(dir)
	if fileExists(path) || fileExists(PathJSON(dir)) {
		return path, ErrExists
	}
	return path, Save(Default(), path)
}
