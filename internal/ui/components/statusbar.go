// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows the key bindings that apply to the focused area.
type StatusBar struct {
	Width    int
	Bindings []key.Binding
	theme    *styles.Theme
}

// NewStatusBar creates an empty status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetTheme swaps the styles after a theme change.
func (s *StatusBar) SetTheme(theme *styles.Theme) { s.theme = theme }

// View renders as many hints as fit the width.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}

	var parts []string
	used := 0
	for _, b := range s.Bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		plain := h.Key + " " + h.Desc
		if used+len(plain)+3 > width-2 {
			break
		}
		parts = append(parts, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
		used += len(plain) + 3
	}
	return s.theme.StatusBar.Width(width).Render(strings.Join(parts, "   "))
}
