// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/logging"
)

// Env is what every command needs: configuration, a logger and a gateway
// bound to the stored session.
type Env struct {
	Config  *config.Config
	Log     zerolog.Logger
	Auth    *auth.Context
	Store   *auth.Store
	Gateway *gateway.Client

	logFile io.Closer
}

// Setup loads configuration and applies command-line overrides.
func Setup(args Args) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewEnv(cfg, args)
}

// NewEnv builds an Env over cfg. The gateway points at the stored session's
// server when it has one and no --server was given.
func NewEnv(cfg *config.Config, args Args) (*Env, error) {
	if args.Server != "" {
		cfg.Server.URL = strings.TrimRight(args.Server, "/")
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env := &Env{
		Config: cfg,
		Auth:   auth.NewContext(),
		Store:  auth.NewStore(cfg.Paths.SessionFile),
	}

	var out io.Writer
	if cfg.Logging.File != "" {
		f, err := logging.OpenFile(cfg.Logging.File)
		if err != nil {
			return nil, err
		}
		env.logFile = f
		out = f
	}
	env.Log = logging.Init(logging.Options{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: out,
	})

	server := cfg.Server.URL
	if args.Server == "" {
		if stored, err := env.Store.Load(); err == nil && stored.ServerURL != "" {
			server = stored.ServerURL
		}
	}
	env.Gateway = gateway.New(server, env.Auth, gateway.Options{
		Timeout:           cfg.Server.Timeout(),
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	}, logging.Component(env.Log, "gateway"))

	env.Log.Debug().Str("server", server).Str("session_file", env.Store.Path()).Msg("environment ready")
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

func (e *Env) String() string {
	return fmt.Sprintf("server=%s session=%s", e.Gateway.BaseURL(), e.Store.Path())
}
