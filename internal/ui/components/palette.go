// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// FuzzyMatch reports whether every rune of query appears in target in order,
// ignoring case. Consecutive runes, word starts and the first rune score
// higher.
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}
	q := []rune(strings.ToLower(query))
	tr := []rune(strings.ToLower(target))

	qi, last := 0, -1
	for ti := 0; ti < len(tr) && qi < len(q); ti++ {
		if tr[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if ti > 0 && (tr[ti-1] == ' ' || tr[ti-1] == '-' || !unicode.IsLetter(tr[ti-1])) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}
	if qi < len(q) {
		return 0, false
	}
	return score, true
}

// =============================================================================
// PAGE PALETTE
// =============================================================================

// Palette is an overlay for jumping to a page by typing part of its name.
type Palette struct {
	input    textinput.Model
	items    []view.MenuItem
	filtered []view.MenuItem
	selected int
	visible  bool
	theme    *styles.Theme
	width    int
	height   int
}

// NewPalette creates a hidden palette.
func NewPalette(theme *styles.Theme) *Palette {
	ti := textinput.New()
	ti.Placeholder = "Go to page..."
	ti.Prompt = "> "
	ti.CharLimit = 40
	ti.Width = 30
	return &Palette{input: ti, theme: theme, width: 80, height: 24}
}

// SetTheme swaps the styles after a theme change.
func (p *Palette) SetTheme(theme *styles.Theme) { p.theme = theme }

// SetSize sets the screen size the palette is centred in.
func (p *Palette) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetItems replaces the pages offered.
func (p *Palette) SetItems(items []view.MenuItem) {
	p.items = items
	p.filter()
}

// Visible reports whether the palette is open.
func (p *Palette) Visible() bool { return p.visible }

// Show opens the palette with an empty query.
func (p *Palette) Show() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	p.filter()
	return p.input.Focus()
}

// Hide closes the palette.
func (p *Palette) Hide() {
	p.visible = false
	p.input.Blur()
}

// Filtered returns the pages matching the query, best first.
func (p *Palette) Filtered() []view.MenuItem { return p.filtered }

func (p *Palette) filter() {
	type scored struct {
		item  view.MenuItem
		score int
		order int
	}
	query := strings.TrimSpace(p.input.Value())
	var matches []scored
	for i, it := range p.items {
		if s, ok := FuzzyMatch(query, it.Label); ok {
			matches = append(matches, scored{it, s, i})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].order < matches[j].order
	})
	p.filtered = p.filtered[:0]
	for _, m := range matches {
		p.filtered = append(p.filtered, m.item)
	}
	p.selected = 0
}

// Update handles keys while the palette is open. It returns the chosen page
// id once the user presses enter.
func (p *Palette) Update(msg tea.Msg) (string, tea.Cmd) {
	if !p.visible {
		return "", nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			p.Hide()
			return "", nil
		case "enter":
			if p.selected < len(p.filtered) {
				id := p.filtered[p.selected].ID
				p.Hide()
				return id, nil
			}
			return "", nil
		case "up", "shift+tab":
			if n := len(p.filtered); n > 0 {
				p.selected = (p.selected - 1 + n) % n
			}
			return "", nil
		case "down", "tab":
			if n := len(p.filtered); n > 0 {
				p.selected = (p.selected + 1) % n
			}
			return "", nil
		}
	}

	prev := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != prev {
		p.filter()
	}
	return "", cmd
}

// View renders the palette centred on the screen.
func (p *Palette) View() string {
	if !p.visible {
		return ""
	}
	t := p.theme
	lines := []string{t.ModalTitle.Render("Go to page"), p.input.View(), ""}
	if len(p.filtered) == 0 {
		lines = append(lines, t.TableEmpty.Render("No matching pages"))
	}
	for i, it := range p.filtered {
		style := t.MenuItem
		if i == p.selected {
			style = t.MenuItemActive
		}
		lines = append(lines, style.Render(padRight(it.Label, 28)))
	}
	box := t.ModalBox.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}
