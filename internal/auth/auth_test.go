// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROLE TABLE TESTS
// =============================================================================

func TestRoleAllows(t *testing.T) {
	tests := []struct {
		role Role
		page Page
		want bool
	}{
		{RoleAdmin, PageUsers, true},
		{RoleAdmin, PageDataManagement, true},
		{RoleFaculty, PageStudents, true},
		{RoleFaculty, PageAcademics, false},
		{RoleFaculty, PageUsers, false},
		{RoleFaculty, PageActivities, false},
		{RoleFaculty, PageDataManagement, false},
		{RoleStudent, PageDashboard, true},
		{RoleStudent, PageEvents, true},
		{RoleStudent, PageTimetable, true},
		{RoleStudent, PageProfile, true},
		{RoleStudent, PageChangePassword, true},
		{RoleStudent, PageUsers, false},
		{RoleStudent, PageStudents, false},
		{Role("Janitor"), PageDashboard, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.role.Allows(tt.page), "%s -> %s", tt.role, tt.page)
	}
}

func TestRoleCapabilities(t *testing.T) {
	require.True(t, RoleAdmin.Can(CapExportData))
	require.False(t, RoleFaculty.Can(CapExportData))
	require.True(t, RoleFaculty.Can(CapManageStudents))
	require.True(t, RoleStudent.Can(CapRegisterEvents))
	require.False(t, RoleStudent.Can(CapManageEvents))
	require.True(t, RoleAdmin.Can(CapCreateEvents))
	require.False(t, RoleFaculty.Can(CapCreateEvents))
	require.True(t, RoleFaculty.Can(CapManageEvents))
}

func TestAllowedPagesKeepMenuOrder(t *testing.T) {
	require.Equal(t, []Page{
		PageDashboard, PageEvents, PageTimetable, PageProfile, PageChangePassword,
	}, RoleStudent.AllowedPages())
	require.Len(t, RoleAdmin.AllowedPages(), len(pageOrder))
}

func TestLookupPageAndRoleParsing(t *testing.T) {
	p, ok := LookupPage(" Users ")
	require.True(t, ok)
	require.Equal(t, PageUsers, p)

	_, ok = LookupPage("reports")
	require.False(t, ok)

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"username":"a","role":"faculty"}`), &u))
	require.Equal(t, RoleFaculty, u.Role)
	require.Equal(t, "Change Password", PageChangePassword.Label())
}

// =============================================================================
// CONTEXT TESTS
// =============================================================================

func TestContextLifecycle(t *testing.T) {
	c := NewContext()
	require.False(t, c.Active())
	require.Equal(t, "", c.Token())
	_, ok := c.Identity()
	require.False(t, ok)

	c.Establish("tok", User{Username: "s1", Role: RoleStudent, DefaultPassword: true})
	require.Equal(t, "tok", c.Token())

	id, ok := c.Identity()
	require.True(t, ok)
	require.True(t, id.MustChangePassword)
	require.False(t, id.Allows(PageUsers))

	c.SetRemaining(-5, time.Now())
	require.Equal(t, 0, c.Remaining())
	c.SetRemaining(300, time.Now())
	require.Equal(t, 300, c.Remaining())

	c.MarkProfileCompleted()
	id, _ = c.Identity()
	require.True(t, id.ProfileCompleted)

	c.Clear()
	require.False(t, c.Active())
	require.Equal(t, 0, c.Remaining())
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStoreRoundTripAndClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(StoredSession{
		Token: "abc",
		User:  User{Username: "admin", Role: RoleAdmin},
	}))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "abc", got.Token)
	require.Equal(t, RoleAdmin, got.User.Role)
	require.False(t, got.SavedAt.IsZero())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestStoreRejectsTokenlessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"username":"x"}}`), 0600))

	_, err := NewStore(path).Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestHydrateSeedsRemainingFromJWT(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(StoredSession{Token: token, User: User{Username: "f", Role: RoleFaculty}}))

	c := NewContext()
	require.NoError(t, c.Hydrate(store))
	require.InDelta(t, 600, c.Remaining(), 5)
}

func TestHydrateRefusesUnknownRole(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(StoredSession{Token: "tok", User: User{Username: "j", Role: Role("Janitor")}}))

	c := NewContext()
	err := c.Hydrate(store)
	require.ErrorIs(t, err, ErrNoSession)
	require.False(t, c.Active())
	require.Equal(t, "", c.Token())

	require.NoError(t, c.Establish("tok", User{Username: "a", Role: RoleAdmin}))
	require.ErrorIs(t, c.Establish("tok2", User{Username: "j", Role: ""}), ErrNoSession)
	require.False(t, c.Active(), "a refused user drops the previous session")
}

func TestPeekExpiry(t *testing.T) {
	_, ok := PeekExpiry("")
	require.False(t, ok)
	_, ok = PeekExpiry("opaque-session-token")
	require.False(t, ok)

	exp := time.Unix(1_900_000_000, 0)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	got, ok := PeekExpiry(token)
	require.True(t, ok)
	require.Equal(t, exp.Unix(), got.Unix())
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcherReportsRemoval(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(StoredSession{Token: "t", User: User{Username: "u"}}))

	gone := make(chan struct{}, 1)
	w, err := NewWatcher(store, func() { gone <- struct{}{} }, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	// A re-save must not count as removal.
	require.NoError(t, store.Save(StoredSession{Token: "t2", User: User{Username: "u"}}))
	require.NoError(t, store.Clear())

	select {
	case <-gone:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report removal")
	}
}
