// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// FUZZY MATCHING TESTS
// =============================================================================

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		query, target string
		match         bool
	}{
		{"", "Dashboard", true},
		{"dash", "Dashboard", true},
		{"tt", "Timetable", true},
		{"cp", "Change Password", true},
		{"xyz", "Events", false},
		{"eventsx", "Events", false},
	}
	for _, tt := range tests {
		if _, ok := FuzzyMatch(tt.query, tt.target); ok != tt.match {
			t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tt.query, tt.target, ok, tt.match)
		}
	}

	start, _ := FuzzyMatch("st", "Students")
	middle, _ := FuzzyMatch("st", "Manage Lists")
	if start <= middle {
		t.Errorf("prefix match should score higher: %d <= %d", start, middle)
	}
}

// =============================================================================
// PALETTE TESTS
// =============================================================================

func TestPalette_FilterAndChoose(t *testing.T) {
	p := NewPalette(styles.NewTheme(styles.ThemeLight))
	p.SetItems([]view.MenuItem{
		{ID: "dashboard", Label: "Dashboard"},
		{ID: "students", Label: "Students"},
		{ID: "timetable", Label: "Timetable"},
		{ID: "data-management", Label: "Data Management"},
	})
	p.Show()

	if len(p.Filtered()) != 4 {
		t.Fatalf("empty query should list every page, got %d", len(p.Filtered()))
	}

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("tim")})
	if got := p.Filtered(); len(got) == 0 || got[0].ID != "timetable" {
		t.Fatalf("filtered = %+v", got)
	}

	id, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if id != "timetable" {
		t.Errorf("enter chose %q", id)
	}
	if p.Visible() {
		t.Error("palette should close after choosing")
	}
}

func TestPalette_EscapeCloses(t *testing.T) {
	p := NewPalette(styles.NewTheme(styles.ThemeLight))
	p.SetItems([]view.MenuItem{{ID: "events", Label: "Events"}})
	p.Show()

	id, _ := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if id != "" || p.Visible() {
		t.Error("esc should close without choosing")
	}
}
