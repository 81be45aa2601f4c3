// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

type harness struct {
	rt        *loop.Manual
	sink      *view.Recorder
	auth      *auth.Context
	clock     *Clock
	server    int
	fetchErr  error
	fetches   int
	loggedOut []string
}

func newHarness(t *testing.T, initial int) *harness {
	t.Helper()
	h := &harness{
		rt:     loop.NewManual(time.Unix(1_700_000_000, 0)),
		sink:   view.NewRecorder(),
		auth:   auth.NewContext(),
		server: initial,
	}
	h.auth.Establish("tok", auth.User{Username: "u", Role: auth.RoleStudent})
	cfg := DefaultConfig()
	cfg.Timeout = initial
	h.clock = NewClock(h.rt, cfg, Hooks{
		Fetch: func(ctx context.Context) (int, error) {
			h.fetches++
			if h.fetchErr != nil {
				return 0, h.fetchErr
			}
			return h.server, nil
		},
		Sink:        h.sink,
		OnLoggedOut: func(reason string) { h.loggedOut = append(h.loggedOut, reason) },
	}, h.auth, zerolog.Nop())
	return h
}

func (h *harness) expiryNotices() int {
	n := 0
	for _, notice := range h.sink.Notices {
		if notice.Message == ExpiredMessage {
			n++
		}
	}
	return n
}

// =============================================================================
// DISPLAY TESTS
// =============================================================================

func TestFormatRemaining_RoundTrips(t *testing.T) {
	for r := 0; r <= 900; r++ {
		s := FormatRemaining(r)
		require.Len(t, s, 5)
		var m, sec int
		_, err := fmt.Sscanf(s, "%02d:%02d", &m, &sec)
		require.NoError(t, err)
		require.Equal(t, r, m*60+sec, s)
		require.Less(t, sec, 60)
	}
	require.Equal(t, "00:00", FormatRemaining(-3))
	require.Equal(t, "15:00", FormatRemaining(900))
}

func TestEmphasisFor(t *testing.T) {
	require.Equal(t, view.EmphasisNormal, EmphasisFor(900))
	require.Equal(t, view.EmphasisNormal, EmphasisFor(120))
	require.Equal(t, view.EmphasisWarning, EmphasisFor(119))
	require.Equal(t, view.EmphasisWarning, EmphasisFor(1))
	require.Equal(t, view.EmphasisExpired, EmphasisFor(0))
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Default().Session)
	require.Equal(t, DefaultConfig(), cfg)
}

// =============================================================================
// COUNTDOWN TESTS
// =============================================================================

func TestTick_NormalThenWarning(t *testing.T) {
	h := newHarness(t, 125)

	h.clock.Tick()
	require.Equal(t, 124, h.clock.Remaining())
	require.Equal(t, StateActive, h.clock.State())
	last, _ := h.sink.LastTimer()
	require.Equal(t, view.Timer{Text: "02:04", Remaining: 124, Emphasis: view.EmphasisNormal}, last)

	h.clock.Resync(121)
	require.Equal(t, StateActive, h.clock.State())
	h.clock.Tick()
	require.Equal(t, 120, h.clock.Remaining())
	require.Equal(t, StateWarning, h.clock.State())
	last, _ = h.sink.LastTimer()
	require.Equal(t, view.EmphasisNormal, last.Emphasis)
	require.Equal(t, 1, h.sink.NoticeCount(view.NoticeWarning), "one warning on entering the window")

	h.clock.Tick()
	require.Equal(t, 119, h.clock.Remaining())
	require.Equal(t, StateWarning, h.clock.State())
	last, _ = h.sink.LastTimer()
	require.Equal(t, view.EmphasisWarning, last.Emphasis)
	require.Equal(t, 119, h.auth.Remaining())
	require.Equal(t, 1, h.sink.NoticeCount(view.NoticeWarning))
}

func TestWarningStateBoundary(t *testing.T) {
	tests := []struct {
		remaining int
		want      State
	}{
		{900, StateActive},
		{121, StateActive},
		{120, StateWarning},
		{119, StateWarning},
		{1, StateWarning},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.remaining), func(t *testing.T) {
			h := newHarness(t, 900)
			h.clock.Resync(tt.remaining)
			require.Equal(t, tt.want, h.clock.State())
			require.Equal(t, tt.remaining, h.clock.Remaining())
		})
	}
}

func TestStart_ImmediateResyncThenCadence(t *testing.T) {
	h := newHarness(t, 900)
	h.server = 800

	h.clock.Start()
	h.rt.Drain()
	require.Equal(t, 1, h.fetches)
	require.Equal(t, 800, h.clock.Remaining())

	h.clock.Start()
	h.rt.Drain()
	require.Equal(t, 1, h.fetches, "second Start is ignored")

	// 30 ticks, then the 30 s resync overwrites the drifted value.
	h.server = 760
	h.rt.Advance(30 * time.Second)
	require.Equal(t, 2, h.fetches)
	require.Equal(t, 760, h.clock.Remaining())

	h.server = 900
	h.rt.Advance(30 * time.Second)
	require.Equal(t, 900, h.clock.Remaining(), "authoritative value can also raise the countdown")
}

func TestResync_ClampsNegative(t *testing.T) {
	h := newHarness(t, 300)
	h.clock.Resync(-40)
	require.Equal(t, 0, h.clock.Remaining())
	require.Equal(t, StateExpired, h.clock.State())
}

func TestTickToZeroExpires(t *testing.T) {
	h := newHarness(t, 3)
	h.clock.Start()
	h.rt.Drain()

	h.rt.Advance(3 * time.Second)
	require.Equal(t, StateExpired, h.clock.State())
	require.Equal(t, 1, h.expiryNotices())
	last, _ := h.sink.LastTimer()
	require.Equal(t, "00:00", last.Text)
	require.Equal(t, view.EmphasisExpired, last.Emphasis)

	h.rt.Advance(2 * time.Second)
	require.Equal(t, StateLoggedOut, h.clock.State())
	require.Len(t, h.loggedOut, 1)
	require.Equal(t, 0, h.rt.ActiveTimers())
}

// =============================================================================
// EXPIRY TESTS
// =============================================================================

func TestExpire_RunsOnce(t *testing.T) {
	h := newHarness(t, 600)
	h.clock.Start()
	h.rt.Drain()

	h.clock.Expire("first")
	h.clock.Expire("second")
	h.clock.ResyncFailed(fault.ErrNetwork)
	h.clock.Tick()
	h.clock.Resync(500)

	require.Equal(t, 0, h.clock.Remaining())
	require.Equal(t, 1, h.expiryNotices())

	h.rt.Advance(1999 * time.Millisecond)
	require.Empty(t, h.loggedOut, "logout waits for the grace delay")

	h.rt.Advance(time.Millisecond)
	require.Equal(t, []string{"first"}, h.loggedOut)

	h.rt.Advance(time.Minute)
	require.Len(t, h.loggedOut, 1)
	require.Equal(t, 1, h.fetches, "no resync after expiry")
}

func TestResyncFailure_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth expired", fault.ErrAuthExpired},
		{"network", fmt.Errorf("%w: connection refused", fault.ErrNetwork)},
		{"anything else", errors.New("garbled body")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 900)
			h.fetchErr = tt.err

			h.clock.Start()
			h.rt.Drain()
			require.Equal(t, StateExpired, h.clock.State())

			h.rt.Advance(2 * time.Second)
			require.Equal(t, StateLoggedOut, h.clock.State())
			require.Len(t, h.loggedOut, 1)
		})
	}
}

func TestStop_CancelsGrace(t *testing.T) {
	h := newHarness(t, 900)
	h.clock.Start()
	h.rt.Drain()

	h.clock.Expire("idle")
	h.clock.Stop()
	h.rt.Advance(10 * time.Second)

	require.Equal(t, StateLoggedOut, h.clock.State())
	require.Empty(t, h.loggedOut)
	require.Equal(t, 0, h.rt.ActiveTimers())
}

func TestNewClock_SeedsFromAuthContext(t *testing.T) {
	ac := auth.NewContext()
	ac.Establish("t", auth.User{Username: "a", Role: auth.RoleAdmin})
	ac.SetRemaining(42, time.Now())

	c := NewClock(loop.NewManual(time.Now()), DefaultConfig(), Hooks{}, ac, zerolog.Nop())
	require.Equal(t, 42, c.Remaining())
	require.Equal(t, StateWarning, c.State())
}
