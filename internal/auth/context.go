// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the authenticated session of the portal client: who is
// signed in, with which bearer token, and what their role allows.
//
// # Key Types
//
//   - Context: the single owner of the live Session
//   - Identity: a read-only snapshot handed to page loaders
//   - Store: the session file written by `eduportal login`
//   - Watcher: ends the session when the session file disappears
//
// Role gating lives in one table (roles.go). Nothing else in the client
// branches on the role string.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoSession is returned when no stored session exists.
var ErrNoSession = errors.New("no active session")

// User is the signed-in portal user.
type User struct {
	Username         string `json:"username"`
	Role             Role   `json:"role"`
	ProfileCompleted bool   `json:"profile_completed"`
	PasswordChanged  bool   `json:"password_changed"`
	DefaultPassword  bool   `json:"is_default_password"`
}

// Session is the authenticated session.
type Session struct {
	Token            string
	User             User
	RemainingSeconds int
	LastSyncAt       time.Time
}

// Identity is an immutable view of the current user.
type Identity struct {
	Username           string
	Role               Role
	ProfileCompleted   bool
	MustChangePassword bool
}

// Allows reports whether the identity may visit p.
func (id Identity) Allows(p Page) bool { return id.Role.Allows(p) }

// Can reports whether the identity holds c.
func (id Identity) Can(c Capability) bool { return id.Role.Can(c) }

// Context owns the current Session. The token is read from request
// goroutines, everything else from the event loop.
type Context struct {
	mu      sync.RWMutex
	session *Session
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{}
}

// Hydrate loads the session from store. It returns ErrNoSession when nothing
// usable is stored.
func (c *Context) Hydrate(store *Store) error {
	stored, err := store.Load()
	if err != nil {
		return err
	}
	if err := c.Establish(stored.Token, stored.User); err != nil {
		return err
	}
	if exp, ok := PeekExpiry(stored.Token); ok {
		c.SetRemaining(int(time.Until(exp).Seconds()), time.Now())
	}
	return nil
}

// Establish replaces the session with a fresh one. A user whose role is not a
// portal role is refused with ErrNoSession and the context is left empty.
func (c *Context) Establish(token string, user User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !user.Role.Known() {
		c.session = nil
		return fmt.Errorf("%w: unknown role %q", ErrNoSession, user.Role)
	}
	c.session = &Session{Token: token, User: user}
	return nil
}

// Active reports whether a session is held.
func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// Token returns the bearer token, or "" without a session.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// Identity returns a snapshot of the user. ok is false without a session.
func (c *Context) Identity() (Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Identity{}, false
	}
	u := c.session.User
	return Identity{
		Username:           u.Username,
		Role:               u.Role,
		ProfileCompleted:   u.ProfileCompleted,
		MustChangePassword: u.DefaultPassword && !u.PasswordChanged,
	}, true
}

// Remaining returns the last known remaining seconds.
func (c *Context) Remaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return 0
	}
	return c.session.RemainingSeconds
}

// SetRemaining records the countdown value. Negative values clamp to zero.
func (c *Context) SetRemaining(seconds int, at time.Time) {
	if seconds < 0 {
		seconds = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return
	}
	c.session.RemainingSeconds = seconds
	c.session.LastSyncAt = at
}

// MarkProfileCompleted flags the profile as filled in.
func (c *Context) MarkProfileCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.User.ProfileCompleted = true
	}
}

// MarkPasswordChanged records that the default password was replaced.
func (c *Context) MarkPasswordChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.User.PasswordChanged = true
		c.session.User.DefaultPassword = false
	}
}

// User returns a copy of the signed-in user.
func (c *Context) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return User{}, false
	}
	return c.session.User, true
}

// Clear drops the session.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}
