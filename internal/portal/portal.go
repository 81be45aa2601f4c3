// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package portal wires one signed-in session together: the auth context, the
// session clock, navigation, dialogs and pages.
//
// Every Controller method runs on the event loop. Work that blocks (HTTP, file
// watching) reports back through loop.Runtime.Post.
package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/modal"
	"github.com/jeranaias/eduportal-tui/internal/nav"
	"github.com/jeranaias/eduportal-tui/internal/pages"
	"github.com/jeranaias/eduportal-tui/internal/session"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

const (
	// LoggedOutMessage is shown on the login screen after an explicit logout.
	LoggedOutMessage = "Logged out successfully"
	// SignedOutElsewhereMessage is shown when the stored session disappears.
	SignedOutElsewhereMessage = "You were signed out in another terminal"
)

// ErrEnded is returned by operations on a finished session.
var ErrEnded = errors.New("session has ended")

// Deps are the services a Controller needs.
type Deps struct {
	Runtime loop.Runtime
	Sink    view.Sink
	Gateway *gateway.Client
	Auth    *auth.Context
	Store   *auth.Store
	Config  *config.Config
	Log     zerolog.Logger

	// WatchStore ends the session when the session file is deleted.
	WatchStore bool
	// Copy overrides the clipboard writer.
	Copy func(text string) error
}

// Controller runs one session from Start until it ends.
type Controller struct {
	d   Deps
	cfg *config.Config
	log zerolog.Logger

	nav    *nav.Controller
	modals *modal.Manager
	clock  *session.Clock
	pages  *pages.Set

	watcher     *auth.Watcher
	logoutTimer loop.Timer
	ctx         context.Context
	cancel      context.CancelFunc

	theme   string
	started bool
	ended   bool
	onEnd   []func(reason string)
}

// New creates a controller. Nothing happens until Start.
func New(d Deps) *Controller {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		d:      d,
		cfg:    cfg,
		log:    d.Log.With().Str("component", "portal").Logger(),
		modals: modal.NewManager(d.Sink, d.Log),
		nav:    nav.New(d.Auth, d.Sink, cfg.UI.CollapseBelow, d.Log),
		ctx:    ctx,
		cancel: cancel,
	}
	return c
}

// Start restores the session and shows the first page. Without a usable
// session it redirects to the login screen and returns auth.ErrNoSession.
func (c *Controller) Start() error {
	if c.started {
		return nil
	}
	c.started = true

	if !c.d.Auth.Active() {
		if c.d.Store == nil {
			c.d.Sink.RedirectToLogin("Please login to continue")
			return auth.ErrNoSession
		}
		if err := c.d.Auth.Hydrate(c.d.Store); err != nil {
			c.log.Info().Err(err).Msg("no stored session")
			c.d.Sink.RedirectToLogin("Please login to continue")
			if errors.Is(err, auth.ErrNoSession) {
				return err
			}
			return fmt.Errorf("%w: %v", auth.ErrNoSession, err)
		}
	}
	id, _ := c.d.Auth.Identity()
	c.log.Info().Str("user", id.Username).Str("role", string(id.Role)).Msg("session started")

	rt := c.d.Runtime
	c.d.Gateway.SetSessionFailureHook(func(err error) {
		rt.Post(func() { c.sessionFailed(err) })
	})
	c.d.Sink.ShowUser(view.UserBadge{Username: id.Username, Role: string(id.Role)})

	c.clock = session.NewClock(rt, session.ConfigFrom(c.cfg.Session), session.Hooks{
		Fetch:       c.d.Gateway.Remaining,
		Sink:        c.d.Sink,
		OnLoggedOut: c.endSession,
	}, c.d.Auth, c.d.Log)

	c.pages = pages.New(pages.Deps{
		Runtime:            rt,
		Gateway:            c.d.Gateway,
		Modals:             c.modals,
		Sink:               c.d.Sink,
		Log:                c.d.Log,
		Ctx:                c.ctx,
		Navigate:           c.Navigate,
		Current:            c.nav.Current,
		ExportDir:          c.cfg.Paths.ExportDir,
		ReportFormat:       "txt",
		OnPasswordChanged:  c.passwordChanged,
		OnProfileCompleted: c.profileCompleted,
		Copy:               c.d.Copy,
	})
	c.pages.Register(c.nav)

	c.clock.Start()
	c.loadTheme()
	if c.d.WatchStore {
		c.watch()
	}

	if id.MustChangePassword {
		return c.nav.Navigate(string(auth.PageChangePassword))
	}
	return c.nav.Navigate(string(auth.PageDashboard))
}

// Navigate shows page id. Until a default password is changed only the
// password page is reachable.
func (c *Controller) Navigate(id string) error {
	if c.ended {
		return ErrEnded
	}
	if ident, ok := c.d.Auth.Identity(); ok && ident.MustChangePassword {
		if p, _ := auth.LookupPage(id); p != auth.PageChangePassword {
			c.d.Sink.Notify(view.Warning("Please change your password first"))
			return nav.ErrForbidden
		}
	}
	return c.nav.Navigate(id)
}

// SetViewportWidth records the terminal width for sidebar collapsing.
func (c *Controller) SetViewportWidth(w int) { c.nav.SetViewportWidth(w) }

// Menu returns the navigation for the signed-in role.
func (c *Controller) Menu() view.Menu { return c.nav.Menu() }

// Modals returns the dialog manager the renderer reports presses to.
func (c *Controller) Modals() *modal.Manager { return c.modals }

// Clock returns the session clock, or nil before Start.
func (c *Controller) Clock() *session.Clock { return c.clock }

// Theme returns the applied theme.
func (c *Controller) Theme() string { return c.theme }

// Ended reports whether the session is over.
func (c *Controller) Ended() bool { return c.ended }

// OnEnd registers fn to run after the session ends, with the reason shown
// on the login screen.
func (c *Controller) OnEnd(fn func(reason string)) {
	c.onEnd = append(c.onEnd, fn)
}

// Backdrop handles a click outside the dialog. The forced password dialog
// stays open.
func (c *Controller) Backdrop() {
	if id, ok := c.d.Auth.Identity(); ok && id.MustChangePassword {
		return
	}
	c.modals.Backdrop()
}

// =============================================================================
// SESSION END
// =============================================================================

// Logout ends the session on request. The server call is best effort; the
// local session is cleared either way.
func (c *Controller) Logout() {
	if c.ended {
		return
	}
	if c.clock != nil {
		c.clock.Stop()
	}
	gw := c.d.Gateway
	timeout := c.cfg.Server.Timeout()
	loop.Await(c.d.Runtime, func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return struct{}{}, gw.Logout(ctx)
	}, func(_ struct{}, err error) {
		if err != nil {
			c.log.Debug().Err(err).Msg("server logout failed")
		}
		c.endSession(LoggedOutMessage)
	})
}

// Close stops background work without touching the stored session, so the
// next run can resume it.
func (c *Controller) Close() {
	if c.clock != nil {
		c.clock.Stop()
	}
	c.stopLogoutTimer()
	c.cancel()
	c.closeWatcher()
}

// sessionFailed handles a network or auth failure from any request.
func (c *Controller) sessionFailed(err error) {
	if c.ended || c.clock == nil {
		return
	}
	c.log.Warn().Err(err).Str("kind", fault.KindOf(err).String()).Msg("request ended session")
	c.clock.Expire(fault.Message(err))
}

// endSession clears every trace of the session and returns to the login
// screen. Only the first call has effect.
func (c *Controller) endSession(reason string) {
	if c.ended {
		return
	}
	c.ended = true
	c.stopLogoutTimer()
	c.cancel()
	c.closeWatcher()

	c.modals.Close()
	c.d.Auth.Clear()
	if c.d.Store != nil {
		if err := c.d.Store.Clear(); err != nil {
			c.log.Warn().Err(err).Msg("failed to remove stored session")
		}
	}
	c.nav.Reset()
	c.log.Info().Str("event", "session_ended").Str("reason", reason).Msg("session ended")
	c.d.Sink.RedirectToLogin(reason)
	for _, fn := range c.onEnd {
		fn(reason)
	}
}

func (c *Controller) stopLogoutTimer() {
	if c.logoutTimer != nil {
		c.logoutTimer.Stop()
		c.logoutTimer = nil
	}
}

// watch ends the session when the stored session is deleted elsewhere.
func (c *Controller) watch() {
	if c.d.Store == nil {
		return
	}
	rt := c.d.Runtime
	w, err := auth.NewWatcher(c.d.Store, func() {
		rt.Post(func() {
			if c.clock != nil {
				c.clock.Stop()
			}
			c.endSession(SignedOutElsewhereMessage)
		})
	}, c.d.Log)
	if err != nil {
		c.log.Warn().Err(err).Msg("session file watch unavailable")
		return
	}
	c.watcher = w
}

func (c *Controller) closeWatcher() {
	if c.watcher == nil {
		return
	}
	w := c.watcher
	c.watcher = nil
	if err := w.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close session watcher")
	}
}

// =============================================================================
// ACCOUNT CHANGES
// =============================================================================

// passwordChanged records the change. After the forced first change the
// user signs in again once the grace delay has passed.
func (c *Controller) passwordChanged(first bool) {
	c.d.Auth.MarkPasswordChanged()
	c.persist()
	if !first {
		return
	}
	c.logoutTimer = c.d.Runtime.After(c.cfg.Session.Grace(), func() {
		c.logoutTimer = nil
		c.Logout()
	})
}

func (c *Controller) profileCompleted() {
	c.d.Auth.MarkProfileCompleted()
	c.persist()
}

// persist writes the current user flags back to the stored session.
func (c *Controller) persist() {
	if c.d.Store == nil {
		return
	}
	u, ok := c.d.Auth.User()
	if !ok {
		return
	}
	stored, err := c.d.Store.Load()
	if err != nil {
		c.log.Debug().Err(err).Msg("stored session not updated")
		return
	}
	stored.User = u
	stored.SavedAt = c.d.Runtime.Now()
	if err := c.d.Store.Save(*stored); err != nil {
		c.log.Warn().Err(err).Msg("failed to update stored session")
	}
}

// =============================================================================
// THEME
// =============================================================================

// loadTheme applies the configured theme, then the user's saved preference.
func (c *Controller) loadTheme() {
	c.applyTheme(c.cfg.UI.Theme)
	ctx := c.ctx
	gw := c.d.Gateway
	loop.Await(c.d.Runtime, func() (*gateway.Result, error) {
		return gw.Get(ctx, "/api/user/theme")
	}, func(res *gateway.Result, err error) {
		if err != nil {
			c.log.Debug().Err(err).Msg("theme preference unavailable")
			return
		}
		if t := res.String("theme"); t == "light" || t == "dark" {
			c.applyTheme(t)
		}
	})
}

// ToggleTheme switches between light and dark and saves the choice.
func (c *Controller) ToggleTheme() {
	if c.ended {
		return
	}
	next := "dark"
	if c.theme == "dark" {
		next = "light"
	}
	c.applyTheme(next)

	ctx := c.ctx
	gw := c.d.Gateway
	loop.Await(c.d.Runtime, func() (*gateway.Result, error) {
		return gw.Put(ctx, "/api/user/theme", map[string]string{"theme": next})
	}, func(_ *gateway.Result, err error) {
		if err == nil || fault.EndsSession(err) || errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn().Err(err).Msg("failed to save theme")
		c.d.Sink.Notify(view.Error(fault.Message(err)))
	})
}

func (c *Controller) applyTheme(t string) {
	c.theme = t
	c.d.Sink.ApplyTheme(t)
}
