// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package portal

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/loop"
	"github.com/jeranaias/eduportal-tui/internal/nav"
	"github.com/jeranaias/eduportal-tui/internal/server"
	"github.com/jeranaias/eduportal-tui/internal/session"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

type fixture struct {
	rt     *loop.Manual
	rec    *view.Recorder
	portal *server.Portal
	ac     *auth.Context
	store  *auth.Store
	ctl    *Controller
}

// newFixture stores a session for the admin account, flagged with user, and
// builds a controller over it.
func newFixture(t *testing.T, user auth.User, watch bool) *fixture {
	t.Helper()
	p := server.New()
	ts := httptest.NewServer(p.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ExportDir = dir
	cfg.Paths.SessionFile = filepath.Join(dir, "session.json")

	f := &fixture{
		rt:     loop.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
		rec:    view.NewRecorder(),
		portal: p,
		ac:     auth.NewContext(),
		store:  auth.NewStore(cfg.Paths.SessionFile),
	}
	if user.Username != "" {
		tok, err := p.IssueToken(user.Username)
		require.NoError(t, err)
		require.NoError(t, f.store.Save(auth.StoredSession{Token: tok, User: user, ServerURL: ts.URL}))
	}

	gw := gateway.New(ts.URL, f.ac, gateway.Options{}, zerolog.Nop())
	f.ctl = New(Deps{
		Runtime:    f.rt,
		Sink:       f.rec,
		Gateway:    gw,
		Auth:       f.ac,
		Store:      f.store,
		Config:     cfg,
		Log:        zerolog.Nop(),
		WatchStore: watch,
		Copy:       func(string) error { return nil },
	})
	t.Cleanup(f.ctl.Close)
	return f
}

var adminUser = auth.User{Username: server.AdminUsername, Role: auth.RoleAdmin, ProfileCompleted: true, PasswordChanged: true}

// =============================================================================
// START TESTS
// =============================================================================

func TestStart_WithoutSessionRedirects(t *testing.T) {
	f := newFixture(t, auth.User{}, false)

	err := f.ctl.Start()
	require.ErrorIs(t, err, auth.ErrNoSession)
	require.Len(t, f.rec.Redirects, 1)
	require.Nil(t, f.ctl.Clock())
}

func TestStart_UnknownRoleRedirects(t *testing.T) {
	f := newFixture(t, auth.User{Username: server.AdminUsername, Role: auth.Role("Guest")}, false)

	err := f.ctl.Start()
	require.ErrorIs(t, err, auth.ErrNoSession)
	require.Len(t, f.rec.Redirects, 1)
	require.False(t, f.ac.Active())
	require.Nil(t, f.ctl.Clock())
}

func TestStart_RestoresSessionAndShowsDashboard(t *testing.T) {
	f := newFixture(t, adminUser, false)

	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	require.Equal(t, server.AdminUsername, f.rec.User.Username)
	require.Equal(t, session.StateActive, f.ctl.Clock().State())
	require.Equal(t, "light", f.rec.Theme, "saved preference replaces the configured theme")

	p, ok := f.rec.LastPage()
	require.True(t, ok)
	require.Equal(t, "dashboard", p.ID)
	require.False(t, p.Loading)
	require.NotEmpty(t, f.rec.Menus)
}

// =============================================================================
// SESSION END TESTS
// =============================================================================

func TestSessionStatusFailure_LogsOutAfterGrace(t *testing.T) {
	f := newFixture(t, adminUser, false)
	f.portal.FailSessionStatus(true)

	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	require.Equal(t, session.StateExpired, f.ctl.Clock().State())
	require.Equal(t, 1, f.rec.NoticeCount(view.NoticeWarning), "expiry is announced once")
	require.Empty(t, f.rec.Redirects)

	f.rt.Advance(time.Second)
	require.Empty(t, f.rec.Redirects, "grace delay not yet over")

	f.rt.Advance(time.Second)
	require.Equal(t, []string{session.ExpiredMessage}, f.rec.Redirects)
	require.Equal(t, session.StateLoggedOut, f.ctl.Clock().State())
	require.True(t, f.ctl.Ended())
	require.False(t, f.ac.Active())
	_, err := os.Stat(f.store.Path())
	require.True(t, os.IsNotExist(err), "stored session removed")
	require.Zero(t, f.rt.ActiveTimers())
}

func TestRequestAuthFailure_ExpiresSession(t *testing.T) {
	f := newFixture(t, adminUser, false)
	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	f.portal.ExpireSessions()
	require.NoError(t, f.ctl.Navigate("users"))
	f.rt.Drain()

	require.Equal(t, session.StateExpired, f.ctl.Clock().State())
	f.rt.Advance(2 * time.Second)
	require.Len(t, f.rec.Redirects, 1)
}

func TestLogout_ClearsSession(t *testing.T) {
	f := newFixture(t, adminUser, false)
	var ended []string
	f.ctl.OnEnd(func(reason string) { ended = append(ended, reason) })
	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	f.ctl.Logout()
	f.rt.Drain()

	require.Equal(t, []string{LoggedOutMessage}, f.rec.Redirects)
	require.Equal(t, []string{LoggedOutMessage}, ended)
	require.Len(t, f.portal.RequestsTo("/api/auth/logout"), 1)
	require.False(t, f.ac.Active())
	require.Zero(t, f.rt.ActiveTimers())
	require.ErrorIs(t, f.ctl.Navigate("events"), ErrEnded)

	f.ctl.Logout()
	f.rt.Drain()
	require.Len(t, f.rec.Redirects, 1, "second logout is ignored")
}

func TestStoreRemoval_EndsSession(t *testing.T) {
	f := newFixture(t, adminUser, true)
	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	require.NoError(t, os.Remove(f.store.Path()))
	require.Eventually(t, func() bool { return f.rt.Pending() > 0 }, 5*time.Second, 10*time.Millisecond)
	f.rt.Drain()

	require.Equal(t, []string{SignedOutElsewhereMessage}, f.rec.Redirects)
	require.Equal(t, session.StateLoggedOut, f.ctl.Clock().State())
}

// =============================================================================
// ACCOUNT TESTS
// =============================================================================

func TestForcedPasswordChange(t *testing.T) {
	first := adminUser
	first.PasswordChanged = false
	first.DefaultPassword = true
	f := newFixture(t, first, false)

	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	p, _ := f.rec.LastPage()
	require.Equal(t, "change-password", p.ID)
	require.ErrorIs(t, f.ctl.Navigate("users"), nav.ErrForbidden)

	dlg := f.ctl.Modals().Live()
	require.NotNil(t, dlg)
	f.ctl.Backdrop()
	require.Same(t, dlg, f.ctl.Modals().Live(), "forced dialog ignores the backdrop")

	require.True(t, f.ctl.Modals().Press(dlg.ID(), 0, map[string]string{
		"current_password": server.DefaultAdminPassword,
		"new_password":     "fresh-pass",
		"confirm_password": "fresh-pass",
	}))
	f.rt.Drain()

	id, ok := f.ac.Identity()
	require.True(t, ok)
	require.False(t, id.MustChangePassword)
	stored, err := f.store.Load()
	require.NoError(t, err)
	require.True(t, stored.User.PasswordChanged)
	require.Empty(t, f.rec.Redirects)

	f.rt.Advance(2 * time.Second)
	require.Equal(t, []string{LoggedOutMessage}, f.rec.Redirects)
}

func TestToggleTheme(t *testing.T) {
	f := newFixture(t, adminUser, false)
	require.NoError(t, f.ctl.Start())
	f.rt.Drain()

	f.ctl.ToggleTheme()
	f.rt.Drain()
	require.Equal(t, "dark", f.rec.Theme)
	require.Len(t, f.portal.RequestsTo("/api/user/theme"), 2)
	require.Zero(t, f.rec.NoticeCount(view.NoticeError))

	f.portal.Override(http.MethodPut, "/api/user/theme", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid theme. Use \"light\" or \"dark\""}`))
	})
	f.ctl.ToggleTheme()
	f.rt.Drain()
	require.Equal(t, "light", f.rec.Theme)
	n, _ := f.rec.LastNotice()
	require.Equal(t, view.NoticeError, n.Kind)
}
