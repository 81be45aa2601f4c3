// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
		ends bool
	}{
		{"nil", nil, KindUnknown, false},
		{"network", fmt.Errorf("%w: dial tcp: refused", ErrNetwork), KindNetwork, true},
		{"auth", fmt.Errorf("status check: %w", ErrAuthExpired), KindAuthExpired, true},
		{"validation", NewValidationError("new_password", "too short"), KindValidation, false},
		{"rejection", &Rejection{Status: 400, Message: "Invalid theme"}, KindRejection, false},
		{"wrapped rejection", fmt.Errorf("save: %w", &Rejection{Status: 409}), KindRejection, false},
		{"other", errors.New("boom"), KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
			require.Equal(t, tt.ends, EndsSession(tt.err))
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{}
	require.True(t, ve.Empty())

	ve.Add("confirm_password", "passwords do not match")
	ve.Add("new_password", "must be at least 6 characters")
	ve.Add("new_password", "ignored second message")

	require.False(t, ve.Empty())
	require.Equal(t, "passwords do not match; must be at least 6 characters", ve.Error())
}

func TestMessage(t *testing.T) {
	require.Equal(t, "Account is inactive", Message(&Rejection{Status: 403, Message: "Account is inactive"}))
	require.Equal(t, "request rejected (HTTP 500)", Message(&Rejection{Status: 500}))
	require.Equal(t, "Cannot reach the portal server", Message(fmt.Errorf("%w: eof", ErrNetwork)))
	require.Equal(t, "Session expired. Please login again.", Message(ErrAuthExpired))
	require.Equal(t, KindRejection.String(), "ServerRejection")
}
