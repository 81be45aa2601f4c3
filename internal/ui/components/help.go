// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
)

// =============================================================================
// HELP OVERLAY
// =============================================================================

// HelpGroup is a titled set of key bindings.
type HelpGroup struct {
	Title    string
	Bindings []key.Binding
}

// HelpMarkdown lists the groups as markdown tables.
func HelpMarkdown(groups []HelpGroup) string {
	var b strings.Builder
	b.WriteString("# EduPortal keys\n\n")
	for _, g := range groups {
		b.WriteString("## " + g.Title + "\n\n| Key | Action |\n| --- | --- |\n")
		for _, kb := range g.Bindings {
			h := kb.Help()
			if h.Key == "" {
				continue
			}
			b.WriteString("| `" + h.Key + "` | " + h.Desc + " |\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHelp renders the groups with glamour for the given theme. It falls
// back to the raw markdown if rendering fails.
func RenderHelp(theme *styles.Theme, groups []HelpGroup, width, height int) string {
	md := HelpMarkdown(groups)
	wrap := clamp(width-12, 30, 80)

	style := styles.ThemeLight
	if theme.IsDark {
		style = styles.ThemeDark
	}
	out := md
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if rendered, err := r.Render(md); err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}

	box := theme.ModalBox.Render(out + "\n\n" + theme.ShortcutDesc.Render("Press ? or esc to close"))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
