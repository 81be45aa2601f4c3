// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// SidebarWidth is the width of the expanded sidebar, border included.
const SidebarWidth = 24

// =============================================================================
// SIDEBAR COMPONENT
// =============================================================================

// Sidebar lists the pages the signed-in role may open.
type Sidebar struct {
	menu      view.Menu
	cursor    int
	collapsed bool
	theme     *styles.Theme
}

// NewSidebar creates an empty, expanded sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme}
}

// SetTheme swaps the styles after a theme change.
func (s *Sidebar) SetTheme(theme *styles.Theme) { s.theme = theme }

// SetMenu replaces the items and puts the cursor on the active one.
func (s *Sidebar) SetMenu(m view.Menu) {
	s.menu = m
	s.cursor = 0
	for i, it := range m.Items {
		if it.Active {
			s.cursor = i
			break
		}
	}
}

// Menu returns the current items.
func (s *Sidebar) Menu() view.Menu { return s.menu }

// Collapse hides the sidebar.
func (s *Sidebar) Collapse() { s.collapsed = true }

// Toggle shows or hides the sidebar.
func (s *Sidebar) Toggle() { s.collapsed = !s.collapsed }

// Collapsed reports whether the sidebar is hidden.
func (s *Sidebar) Collapsed() bool { return s.collapsed }

// Width returns the columns the sidebar occupies.
func (s *Sidebar) Width() int {
	if s.collapsed {
		return 0
	}
	return SidebarWidth
}

// Move shifts the cursor by delta, wrapping around.
func (s *Sidebar) Move(delta int) {
	n := len(s.menu.Items)
	if n == 0 {
		return
	}
	s.cursor = ((s.cursor+delta)%n + n) % n
}

// Selected returns the page id under the cursor.
func (s *Sidebar) Selected() (string, bool) {
	if s.cursor < 0 || s.cursor >= len(s.menu.Items) {
		return "", false
	}
	return s.menu.Items[s.cursor].ID, true
}

// View renders the menu at height rows. The cursor is only drawn while the
// sidebar has focus.
func (s *Sidebar) View(height int, focused bool) string {
	if s.collapsed {
		return ""
	}
	inner := SidebarWidth - 3
	lines := make([]string, 0, len(s.menu.Items))
	for i, it := range s.menu.Items {
		label := truncate(it.Label, inner-3)
		prefix := "  "
		if focused && i == s.cursor {
			prefix = s.theme.MenuCursor.Render("> ")
		}
		style := s.theme.MenuItem
		if it.Active {
			style = s.theme.MenuItemActive
		}
		lines = append(lines, prefix+style.Render(padRight(label, inner-3)))
	}
	return s.theme.Sidebar.Height(max(height, 1)).Width(inner).Render(strings.Join(lines, "\n"))
}
