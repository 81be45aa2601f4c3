// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fault defines the portal client's error taxonomy.
//
// Four kinds of failure exist:
//
//   - NetworkFailure: the server could not be reached (ErrNetwork)
//   - AuthExpired: the server reports the session invalid (ErrAuthExpired)
//   - ValidationFailure: local input checks failed (*ValidationError)
//   - ServerRejection: a business call returned success=false (*Rejection)
//
// NetworkFailure and AuthExpired both end the session: the client never assumes
// a session is still valid after an ambiguous failure.
package fault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error.
type Kind int

const (
	// KindUnknown is any error outside the taxonomy.
	KindUnknown Kind = iota
	// KindNetwork is a transport failure.
	KindNetwork
	// KindAuthExpired is an invalid or expired session.
	KindAuthExpired
	// KindValidation is a local input failure.
	KindValidation
	// KindRejection is a structured server refusal.
	KindRejection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkFailure"
	case KindAuthExpired:
		return "AuthExpired"
	case KindValidation:
		return "ValidationFailure"
	case KindRejection:
		return "ServerRejection"
	default:
		return "Unknown"
	}
}

var (
	// ErrNetwork indicates the server could not be reached.
	ErrNetwork = errors.New("server unreachable")

	// ErrAuthExpired indicates the session is no longer valid.
	ErrAuthExpired = errors.New("session expired")
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError holds field-level feedback for a form.
type ValidationError struct {
	Fields map[string]string // field name -> message
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first one.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}

// =============================================================================
// REJECTION
// =============================================================================

// Rejection is a structured success=false answer from the server.
type Rejection struct {
	Status  int    // HTTP status code
	Message string // server-provided message
}

func (e *Rejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected (HTTP %d)", e.Status)
	}
	return e.Message
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrAuthExpired) {
		return KindAuthExpired
	}
	if errors.Is(err, ErrNetwork) {
		return KindNetwork
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		return KindRejection
	}
	return KindUnknown
}

// EndsSession reports whether err must terminate the session.
func EndsSession(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindAuthExpired:
		return true
	default:
		return false
	}
}

// Message returns the text to show a user for err.
func Message(err error) string {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Error()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	switch KindOf(err) {
	case KindNetwork:
		return "Cannot reach the portal server"
	case KindAuthExpired:
		return "Session expired. Please login again."
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
