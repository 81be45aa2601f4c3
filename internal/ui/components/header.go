// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand and page title on the left, the signed-in
// user and the session countdown on the right.
type Header struct {
	Title     string
	PageTitle string
	User      view.UserBadge
	Timer     view.Timer
	HasTimer  bool
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: "EduPortal", Width: 80, theme: theme}
}

// SetTheme swaps the styles after a theme change.
func (h *Header) SetTheme(theme *styles.Theme) { h.theme = theme }

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) { h.Width = width }

// SetUser updates the user badge.
func (h *Header) SetUser(u view.UserBadge) { h.User = u }

// SetTimer updates the session countdown.
func (h *Header) SetTimer(t view.Timer) {
	h.Timer = t
	h.HasTimer = true
}

// ClearSession drops the user badge and countdown.
func (h *Header) ClearSession() {
	h.User = view.UserBadge{}
	h.Timer = view.Timer{}
	h.HasTimer = false
}

// View renders the header on one line.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}
	t := h.theme

	accent := lipgloss.NewStyle().Foreground(styles.Purple)
	left := accent.Render("< ") + t.HeaderBrand.Render(h.Title) + accent.Render(" >")
	if h.PageTitle != "" {
		left += "  " + t.HeaderRole.Render(h.PageTitle)
	}

	var right []string
	if h.User.Username != "" {
		badge := t.HeaderUser.Render(h.User.Username)
		if h.User.Role != "" {
			badge += " " + t.HeaderRole.Render("("+h.User.Role+")")
		}
		right = append(right, badge)
	}
	if h.HasTimer {
		right = append(right, t.Timer(h.Timer.Emphasis).Render("Session: "+h.Timer.Text))
	}
	rightText := strings.Join(right, "  ")

	gap := width - 4 - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(width).Render(left + strings.Repeat(" ", gap) + rightText)
}
