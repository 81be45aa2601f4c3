// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/config"
	"github.com/jeranaias/eduportal-tui/internal/fault"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
)

// UsageError is a malformed command line.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return e.Message + "\nUsage: " + e.Usage
	}
	return e.Message
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(name, usage string) error {
	return &UsageError{Message: "missing required argument: " + name, Usage: usage}
}

// GetExitCode maps err to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return ExitUsageError
	}
	var ve config.ValidateErrors
	if errors.As(err, &ve) {
		return ExitConfigError
	}
	if errors.Is(err, auth.ErrNoSession) {
		return ExitAuthError
	}
	switch fault.KindOf(err) {
	case fault.KindAuthExpired:
		return ExitAuthError
	case fault.KindNetwork:
		return ExitNetworkError
	case fault.KindValidation:
		return ExitUsageError
	}
	return ExitGeneralError
}

// DisplayError prints err for a person, or as a JSON envelope.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(os.Stdout, false)
		return
	}
	msg := err.Error()
	switch fault.KindOf(err) {
	case fault.KindNetwork, fault.KindRejection, fault.KindAuthExpired:
		msg = fault.Message(err)
	}
	if errors.Is(err, auth.ErrNoSession) {
		msg = "not signed in. Run: eduportal login"
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), msg)
}
