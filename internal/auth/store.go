// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/eduportal-tui/internal/util"
)

// StoredSession is the on-disk form of a session.
type StoredSession struct {
	Token     string    `json:"session_token"`
	User      User      `json:"user"`
	ServerURL string    `json:"server_url,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// Store persists the session between `eduportal login` and the TUI.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

// Load reads the stored session. A missing, empty or tokenless file yields
// ErrNoSession.
func (s *Store) Load() (*StoredSession, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNoSession
	}

	var stored StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", s.path, err)
	}
	if stored.Token == "" || stored.User.Username == "" {
		return nil, ErrNoSession
	}
	return &stored, nil
}

// Save writes the session with owner-only permissions.
func (s *Store) Save(stored StoredSession) error {
	if stored.SavedAt.IsZero() {
		stored.SavedAt = time.Now()
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

// Clear removes the stored session.
func (s *Store) Clear() error {
	if err := util.RemoveIfExists(s.path); err != nil {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
