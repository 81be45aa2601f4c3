// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// ExpiredMessage is shown when the session ends on its own.
const ExpiredMessage = "Session expired. Please login again."

// DefaultWarningThreshold is the remaining time below which the countdown is
// highlighted.
const DefaultWarningThreshold = 120

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the clock cadence.
type Config struct {
	// Timeout seeds the countdown before the first resync.
	Timeout int
	// Tick is the local countdown step (1 s).
	Tick time.Duration
	// Resync is the authoritative sync interval (30 s).
	Resync time.Duration
	// WarningThreshold in seconds (120).
	WarningThreshold int
	// Grace is the delay between expiry and logout (2 s).
	Grace time.Duration
}

// DefaultConfig returns the portal defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:          900,
		Tick:             time.Second,
		Resync:           30 * time.Second,
		WarningThreshold: DefaultWarningThreshold,
		Grace:            2 * time.Second,
	}
}

// ConfigFrom converts the file configuration.
func ConfigFrom(c config.SessionConfig) Config {
	return Config{
		Timeout:          c.TimeoutSeconds,
		Tick:             c.Tick(),
		Resync:           c.Resync(),
		WarningThreshold: c.WarningSeconds,
		Grace:            c.Grace(),
	}
}

// =============================================================================
// STATE
// =============================================================================

// State is the lifecycle phase of the session.
type State int

const (
	StateActive State = iota
	StateWarning
	StateExpired
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateExpired:
		return "expired"
	case StateLoggedOut:
		return "logged_out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further countdown happens.
func (s State) Terminal() bool {
	return s == StateExpired || s == StateLoggedOut
}

// FormatRemaining renders seconds as MM:SS. Negative input renders 00:00.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// EmphasisFor returns the countdown styling for the default threshold.
func EmphasisFor(seconds int) view.Emphasis {
	return emphasisWithin(seconds, DefaultWarningThreshold)
}

func emphasisWithin(seconds, threshold int) view.Emphasis {
	switch {
	case seconds <= 0:
		return view.EmphasisExpired
	case seconds < threshold:
		return view.EmphasisWarning
	default:
		return view.EmphasisNormal
	}
}

// =============================================================================
// CLOCK
// =============================================================================

// Hooks connects the clock to the rest of the client.
type Hooks struct {
	// Fetch asks the server for the remaining seconds. It runs off-loop.
	Fetch func(ctx context.Context) (int, error)
	// Sink receives the countdown display and the expiry notice.
	Sink view.Sink
	// OnLoggedOut runs on the loop after the grace delay following expiry.
	OnLoggedOut func(reason string)
}

// Clock is the session countdown. All methods must be called on the loop.
type Clock struct {
	rt    loop.Runtime
	cfg   Config
	hooks Hooks
	auth  *auth.Context
	log   zerolog.Logger

	remaining int
	state     State
	started   bool
	syncing   bool

	tickTimer   loop.Timer
	resyncTimer loop.Timer
	graceTimer  loop.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClock creates a stopped clock. The initial value comes from the auth
// context when it was seeded, else from cfg.Timeout.
func NewClock(rt loop.Runtime, cfg Config, hooks Hooks, ac *auth.Context, log zerolog.Logger) *Clock {
	if cfg.WarningThreshold <= 0 {
		cfg.WarningThreshold = DefaultWarningThreshold
	}
	c := &Clock{
		rt:        rt,
		cfg:       cfg,
		hooks:     hooks,
		auth:      ac,
		log:       log.With().Str("component", "session").Logger(),
		remaining: cfg.Timeout,
	}
	if ac != nil && ac.Remaining() > 0 {
		c.remaining = ac.Remaining()
	}
	c.state = c.stateFor(c.remaining)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Remaining returns the current countdown value.
func (c *Clock) Remaining() int { return c.remaining }

// State returns the lifecycle phase.
func (c *Clock) State() State { return c.state }

// Emphasis returns the styling for the current value.
func (c *Clock) Emphasis() view.Emphasis {
	return emphasisWithin(c.remaining, c.cfg.WarningThreshold)
}

// Start performs an immediate resync and starts the tick and resync timers.
// Calling it twice has no effect.
func (c *Clock) Start() {
	if c.started || c.state.Terminal() {
		return
	}
	c.started = true
	c.display()
	c.resyncNow()
	c.tickTimer = c.rt.Every(c.cfg.Tick, c.Tick)
	c.resyncTimer = c.rt.Every(c.cfg.Resync, c.resyncNow)
	c.log.Debug().Int("remaining", c.remaining).Msg("session clock started")
}

// Tick decrements the countdown by one second.
func (c *Clock) Tick() {
	if c.state.Terminal() {
		return
	}
	c.set(c.remaining - 1)
	if c.remaining == 0 {
		c.Expire("countdown elapsed")
	}
}

// Resync overwrites the countdown with the server's value.
func (c *Clock) Resync(serverRemaining int) {
	if c.state.Terminal() {
		return
	}
	drift := c.remaining - serverRemaining
	c.set(serverRemaining)
	c.log.Debug().
		Str("event", "session_resync").
		Int("remaining", c.remaining).
		Int("drift", drift).
		Msg("session resynced")
	if c.remaining == 0 {
		c.Expire("server reported no time left")
	}
}

// ResyncFailed ends the session: an unverifiable session is treated as gone.
func (c *Clock) ResyncFailed(err error) {
	if c.state.Terminal() {
		return
	}
	c.log.Warn().Err(err).Str("kind", fault.KindOf(err).String()).Msg("session resync failed")
	c.Expire(fault.Message(err))
}

// Expire ends the session: timers stop, the expiry notice is shown and,
// after the grace delay, OnLoggedOut runs. Only the first call has effect.
func (c *Clock) Expire(reason string) {
	if c.state.Terminal() {
		return
	}
	c.state = StateExpired
	c.stopCountdown()
	c.remaining = 0
	if c.auth != nil {
		c.auth.SetRemaining(0, c.rt.Now())
	}
	c.display()

	c.log.Info().Str("event", "session_expired").Str("reason", reason).Msg("session expired")
	if c.hooks.Sink != nil {
		c.hooks.Sink.Notify(view.Warning(ExpiredMessage))
	}

	c.graceTimer = c.rt.After(c.cfg.Grace, func() {
		c.graceTimer = nil
		if c.state != StateExpired {
			return
		}
		c.state = StateLoggedOut
		if c.hooks.OnLoggedOut != nil {
			c.hooks.OnLoggedOut(reason)
		}
	})
}

// Stop halts the clock for an explicit logout. No callback runs.
func (c *Clock) Stop() {
	if c.state == StateLoggedOut {
		return
	}
	c.stopCountdown()
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
	}
	c.state = StateLoggedOut
}

func (c *Clock) stopCountdown() {
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
	if c.resyncTimer != nil {
		c.resyncTimer.Stop()
		c.resyncTimer = nil
	}
	c.cancel()
}

func (c *Clock) resyncNow() {
	if c.state.Terminal() || c.syncing || c.hooks.Fetch == nil {
		return
	}
	c.syncing = true
	ctx := c.ctx
	loop.Await(c.rt, func() (int, error) {
		return c.hooks.Fetch(ctx)
	}, func(remaining int, err error) {
		c.syncing = false
		if err != nil {
			c.ResyncFailed(err)
			return
		}
		c.Resync(remaining)
	})
}

// set clamps and stores r, moves between Active and Warning, and updates the
// display.
func (c *Clock) set(r int) {
	if r < 0 {
		r = 0
	}
	c.remaining = r
	if c.auth != nil {
		c.auth.SetRemaining(r, c.rt.Now())
	}

	prev := c.state
	c.state = c.stateFor(r)
	if prev == StateActive && c.state == StateWarning && c.hooks.Sink != nil {
		c.hooks.Sink.Notify(view.Warning("Your session expires in " + FormatRemaining(r)))
	}
	c.display()
}

// stateFor enters Warning at the threshold itself; emphasis turns a second
// later, below it.
func (c *Clock) stateFor(r int) State {
	if r > 0 && r <= c.cfg.WarningThreshold {
		return StateWarning
	}
	return StateActive
}

func (c *Clock) display() {
	if c.hooks.Sink == nil {
		return
	}
	c.hooks.Sink.ShowTimer(view.Timer{
		Text:      FormatRemaining(c.remaining),
		Remaining: c.remaining,
		Emphasis:  c.Emphasis(),
	})
}
