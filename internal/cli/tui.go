// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/eduportal-tui/internal/logging"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/portal"
	"github.com/jeranaias/eduportal-tui/internal/ui/app"
)

// shutdownWait bounds how long quitting waits for the session to close.
const shutdownWait = 2 * time.Second

// RunTUI runs the terminal UI until the user quits.
func RunTUI(env *Env) error {
	if !IsTTY() || !IsStdoutTTY() {
		return fmt.Errorf("the portal needs an interactive terminal; try eduportal status")
	}

	ev := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ev.Run(ctx)

	bridge := app.NewBridge()
	defer bridge.Close()

	cfg := env.Config
	newController := func() *portal.Controller {
		return portal.New(portal.Deps{
			Runtime:    ev,
			Sink:       bridge,
			Gateway:    env.Gateway,
			Auth:       env.Auth,
			Store:      env.Store,
			Config:     cfg,
			Log:        env.Log,
			WatchStore: true,
		})
	}

	model := app.New(app.Options{
		Post:          ev.Post,
		NewController: newController,
		Gateway:       env.Gateway,
		Store:         env.Store,
		Theme:         cfg.UI.Theme,
		ToastDuration: cfg.UI.Toast(),
		LoginTimeout:  cfg.Server.Timeout(),
		Log:           logging.Component(env.Log, "ui"),
	})

	width, height := GetTerminalSize()
	env.Log.Info().Int("width", width).Int("height", height).Str("server", env.Gateway.BaseURL()).Msg("tui start")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	bridge.Attach(p.Send)
	_, err := p.Run()

	closed := make(chan struct{})
	ev.Post(func() {
		if ctl := model.Controller(); ctl != nil {
			ctl.Close()
		}
		close(closed)
	})
	select {
	case <-closed:
	case <-time.After(shutdownWait):
		env.Log.Warn().Msg("session did not close in time")
	}
	ev.Close()

	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	env.Log.Info().Msg("tui exit")
	return nil
}
