// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// SESSION EXPIRED OVERLAY
// =============================================================================

// ExpiredOverlay covers the screen between session expiry and the return to
// the login screen.
type ExpiredOverlay struct {
	Message string
	Width   int
	Height  int
	theme   *styles.Theme
}

// NewExpiredOverlay creates a hidden overlay.
func NewExpiredOverlay(theme *styles.Theme) *ExpiredOverlay {
	return &ExpiredOverlay{theme: theme}
}

// SetTheme swaps the styles after a theme change.
func (o *ExpiredOverlay) SetTheme(theme *styles.Theme) { o.theme = theme }

// Visible reports whether t asks for the overlay.
func Visible(t view.Timer) bool { return t.Emphasis == view.EmphasisExpired }

// View renders the expired box centred in the screen.
func (o *ExpiredOverlay) View() string {
	width := o.Width
	if width == 0 {
		width = 60
	}
	height := o.Height
	if height == 0 {
		height = 24
	}
	maxWidth := clamp(width-8, 40, 60)

	msg := o.Message
	if msg == "" {
		msg = "Session expired. Please login again."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		o.theme.ErrorStyle.Render(styles.StatusIndicators.Error+" Session Expired"),
		"",
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Width(maxWidth-8).Align(lipgloss.Center).Render(msg),
		"",
		o.theme.ShortcutDesc.Render("Returning to the login screen..."),
	)
	box := o.theme.ExpiredBox.Width(maxWidth).Align(lipgloss.Center).Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim))
}
