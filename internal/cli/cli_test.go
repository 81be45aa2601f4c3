// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/server"
)

func init() {
	ForceColorsEnabled(false)
}

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		cmd   Command
		check func(t *testing.T, a Args)
	}{
		{"no args starts tui", nil, CmdTUI, nil},
		{"verbose only", []string{"-v"}, CmdTUI, func(t *testing.T, a Args) {
			require.True(t, a.Verbose)
		}},
		{"login with user", []string{"login", "--user", "ADMIN"}, CmdLogin, func(t *testing.T, a Args) {
			require.Equal(t, "ADMIN", a.User)
		}},
		{"status alias json first", []string{"--json", "s"}, CmdStatus, func(t *testing.T, a Args) {
			require.True(t, a.JSON)
		}},
		{"server flag", []string{"status", "--server=http://portal:5000"}, CmdStatus, func(t *testing.T, a Args) {
			require.Equal(t, "http://portal:5000", a.Server)
		}},
		{"config set", []string{"config", "set", "server.url", "http://x:1"}, CmdConfig, func(t *testing.T, a Args) {
			require.Equal(t, "set", a.Subcommand)
			require.Equal(t, "server.url", a.ConfigKey)
			require.Equal(t, "http://x:1", a.ConfigVal)
		}},
		{"demo options", []string{"demo", "--addr", ":6000", "--seed", "3"}, CmdDemo, func(t *testing.T, a Args) {
			require.Equal(t, ":6000", a.Addr)
			require.Equal(t, 3, a.Seed)
		}},
		{"demo defaults", []string{"demo"}, CmdDemo, func(t *testing.T, a Args) {
			require.Equal(t, ":5000", a.Addr)
			require.Equal(t, 8, a.Seed)
		}},
		{"help flag wins", []string{"login", "--help"}, CmdHelp, nil},
		{"unknown", []string{"frobnicate"}, CmdUnknown, func(t *testing.T, a Args) {
			require.Equal(t, "frobnicate", a.Unknown)
		}},
		{"case insensitive", []string{"LOGOUT"}, CmdLogout, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.input)
			require.Equal(t, tt.cmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"show", "--lines", "50", "--since=2024-01-01", "--json", "-u", "bob", "--", "--raw"}, "json")

	require.Equal(t, "show", p.Subcommand())
	require.Equal(t, "50", p.Flag("lines"))
	require.Equal(t, 50, p.FlagIntOrDefault("lines", 0))
	require.Equal(t, 7, p.FlagIntOrDefault("missing", 7))
	require.Equal(t, "2024-01-01", p.Flag("--since"))
	require.Equal(t, "bob", p.Flag("user", "u"))
	require.True(t, p.BoolFlag("json"))
	require.True(t, p.HasFlag("lines"))
	require.False(t, p.HasFlag("nope"))
	require.Equal(t, []string{"show", "--raw"}, p.PositionalFrom(0))
	require.Equal(t, "", p.Positional(5))
}

func TestArgParser_ExplicitBool(t *testing.T) {
	p := NewArgParser([]string{"--json=false", "--quiet"}, "json", "quiet")
	require.False(t, p.BoolFlag("json"))
	require.True(t, p.HasFlag("json"))
	require.True(t, p.BoolFlag("quiet"))
}

// =============================================================================
// SESSION COMMAND TESTS
// =============================================================================

type cliFixture struct {
	portal *server.Portal
	url    string
	cfg    *config.Config
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	p := server.New()
	ts := httptest.NewServer(p.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SessionFile = filepath.Join(dir, "session.json")
	cfg.Paths.ExportDir = filepath.Join(dir, "exports")
	cfg.Logging.File = filepath.Join(dir, "eduportal.log")
	return &cliFixture{portal: p, url: ts.URL, cfg: cfg}
}

func (f *cliFixture) env(t *testing.T, args Args) *Env {
	t.Helper()
	if args.Server == "" {
		args.Server = f.url
	}
	cfg := *f.cfg
	env, err := NewEnv(&cfg, args)
	require.NoError(t, err)
	t.Cleanup(env.Close)
	return env
}

func TestLogin_StoresSession(t *testing.T) {
	f := newCLIFixture(t)
	env := f.env(t, Args{})
	var out bytes.Buffer

	prompt := NewReaderPrompter(strings.NewReader("ADMIN\nadmin123\n"), &out)
	require.NoError(t, HandleLogin(env, Args{}, prompt, &out))

	require.Contains(t, out.String(), "Login successful")
	require.Contains(t, out.String(), "ADMIN")
	stored, err := env.Store.Load()
	require.NoError(t, err)
	require.Equal(t, server.AdminUsername, stored.User.Username)
	require.Equal(t, f.url, stored.ServerURL)

	info, err := os.Stat(env.Store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newCLIFixture(t)
	env := f.env(t, Args{})
	var out bytes.Buffer

	prompt := NewReaderPrompter(strings.NewReader("wrong\n"), &out)
	err := HandleLogin(env, Args{User: "ADMIN"}, prompt, &out)
	require.Equal(t, fault.KindRejection, fault.KindOf(err))
	_, err = env.Store.Load()
	require.ErrorIs(t, err, auth.ErrNoSession)
}

func TestLogin_EmptyPassword(t *testing.T) {
	f := newCLIFixture(t)
	env := f.env(t, Args{})
	var out bytes.Buffer

	prompt := NewReaderPrompter(strings.NewReader("\n"), &out)
	err := HandleLogin(env, Args{User: "ADMIN"}, prompt, &out)
	var ue *UsageError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestStatus_JSON(t *testing.T) {
	f := newCLIFixture(t)
	login(t, f)
	f.portal.ForceRemaining(95)
	env := f.env(t, Args{})

	var out bytes.Buffer
	require.NoError(t, HandleStatus(env, Args{JSON: true}, &out))

	var resp struct {
		Success bool       `json:"success"`
		Data    StatusInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.True(t, resp.Success)
	require.True(t, resp.Data.SignedIn)
	require.Equal(t, server.AdminUsername, resp.Data.Username)
	require.Equal(t, 95, resp.Data.RemainingSeconds)
	require.Equal(t, "01:35", resp.Data.Remaining)
}

func TestStatus_NotSignedIn(t *testing.T) {
	f := newCLIFixture(t)
	env := f.env(t, Args{})

	var out bytes.Buffer
	require.NoError(t, HandleStatus(env, Args{}, &out))
	require.Contains(t, out.String(), "not signed in")
}

func TestStatus_Expired(t *testing.T) {
	f := newCLIFixture(t)
	login(t, f)
	f.portal.ExpireSessions()
	env := f.env(t, Args{})

	var out bytes.Buffer
	err := HandleStatus(env, Args{}, &out)
	require.ErrorIs(t, err, fault.ErrAuthExpired)
	require.Equal(t, ExitAuthError, GetExitCode(err))
	require.Contains(t, out.String(), "Session expired")
}

func TestLogout_ClearsEvenWhenServerUnreachable(t *testing.T) {
	f := newCLIFixture(t)
	login(t, f)

	env := f.env(t, Args{Server: "http://127.0.0.1:1"})
	var out bytes.Buffer
	require.NoError(t, HandleLogout(env, Args{}, &out))
	require.Contains(t, out.String(), "Logged out successfully")

	_, err := env.Store.Load()
	require.ErrorIs(t, err, auth.ErrNoSession)
}

func TestLogout_CallsServer(t *testing.T) {
	f := newCLIFixture(t)
	login(t, f)
	env := f.env(t, Args{})

	var out bytes.Buffer
	require.NoError(t, HandleLogout(env, Args{}, &out))
	require.Len(t, f.portal.RequestsTo("/api/auth/logout"), 1)

	out.Reset()
	require.NoError(t, HandleLogout(env, Args{}, &out))
	require.Contains(t, out.String(), "Not signed in")
}

func TestForgotPassword(t *testing.T) {
	f := newCLIFixture(t)
	env := f.env(t, Args{})
	var out bytes.Buffer

	prompt := NewReaderPrompter(strings.NewReader("1990\nfresh-pass\nother-pass\n"), &out)
	err := HandleForgotPassword(env, Args{User: "ADMIN"}, prompt, &out)
	require.EqualError(t, err, "Passwords do not match")

	out.Reset()
	prompt = NewReaderPrompter(strings.NewReader("1990\nfresh-pass\nfresh-pass\n"), &out)
	require.NoError(t, HandleForgotPassword(env, Args{User: "ADMIN"}, prompt, &out))
	require.Contains(t, out.String(), "Password reset successfully")
}

func login(t *testing.T, f *cliFixture) {
	t.Helper()
	env := f.env(t, Args{})
	var out bytes.Buffer
	prompt := NewReaderPrompter(strings.NewReader(server.DefaultAdminPassword+"\n"), &out)
	require.NoError(t, HandleLogin(env, Args{User: server.AdminUsername, Quiet: true}, prompt, &out))
}

// =============================================================================
// CONFIG COMMAND TESTS
// =============================================================================

func TestConfig_SetGet(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, HandleConfig(dir, Args{Subcommand: "set", ConfigKey: "ui.theme", ConfigVal: "dark"}, &out))
	out.Reset()
	require.NoError(t, HandleConfig(dir, Args{Subcommand: "get", ConfigKey: "ui.theme"}, &out))
	require.Equal(t, "dark\n", out.String())

	out.Reset()
	require.NoError(t, HandleConfig(dir, Args{Subcommand: "path"}, &out))
	require.Equal(t, config.PathTOML(dir)+"\n", out.String())
}

func TestConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	tests := []struct {
		name string
		args Args
		code int
	}{
		{"invalid theme", Args{Subcommand: "set", ConfigKey: "ui.theme", ConfigVal: "neon"}, ExitConfigError},
		{"unknown key", Args{Subcommand: "set", ConfigKey: "ui.nope", ConfigVal: "1"}, ExitUsageError},
		{"missing key", Args{Subcommand: "get"}, ExitUsageError},
		{"unknown subcommand", Args{Subcommand: "explode"}, ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleConfig(dir, tt.args, &out)
			require.Error(t, err)
			require.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestConfig_Init(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, HandleConfig(dir, Args{Subcommand: "init"}, &out))
	require.Contains(t, out.String(), "Wrote")
	out.Reset()
	require.NoError(t, HandleConfig(dir, Args{Subcommand: "init"}, &out))
	require.Contains(t, out.String(), "already exists")
}

// =============================================================================
// OUTPUT TESTS
// =============================================================================

func TestJSONResponse_Error(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewJSONErrorResponse("status", errors.New("boom")).Write(&out, false))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, false, got["success"])
	require.Equal(t, "boom", got["error"])
	require.Equal(t, "status", got["command"])
}

func TestGetExitCode(t *testing.T) {
	require.Equal(t, ExitSuccess, GetExitCode(nil))
	require.Equal(t, ExitAuthError, GetExitCode(auth.ErrNoSession))
	require.Equal(t, ExitNetworkError, GetExitCode(fault.ErrNetwork))
	require.Equal(t, ExitGeneralError, GetExitCode(errors.New("other")))
}

func TestDisplayError(t *testing.T) {
	var out bytes.Buffer
	DisplayError(&out, "status", auth.ErrNoSession, false)
	require.Contains(t, out.String(), "eduportal login")
}
