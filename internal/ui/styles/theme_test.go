// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// THEME SELECTION TESTS
// =============================================================================

func TestApplyForcedThemes(t *testing.T) {
	defer lipgloss.SetHasDarkBackground(lipgloss.HasDarkBackground())

	tests := []struct {
		name string
		dark bool
	}{
		{ThemeDark, true},
		{ThemeLight, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.name); got != tt.name {
				t.Errorf("Apply(%q) = %q", tt.name, got)
			}
			if lipgloss.HasDarkBackground() != tt.dark {
				t.Errorf("HasDarkBackground() = %v, want %v", lipgloss.HasDarkBackground(), tt.dark)
			}
		})
	}
}

func TestResolveAutoPicksLightOrDark(t *testing.T) {
	for _, name := range []string{ThemeAuto, "", "solarized"} {
		got := Resolve(name)
		if got != ThemeLight && got != ThemeDark {
			t.Errorf("Resolve(%q) = %q", name, got)
		}
	}
}

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	defer lipgloss.SetHasDarkBackground(lipgloss.HasDarkBackground())

	theme := NewTheme(ThemeDark)
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}
	if !theme.IsDark || theme.Name != ThemeDark {
		t.Errorf("NewTheme(dark) = %q dark=%v", theme.Name, theme.IsDark)
	}

	light := NewTheme(ThemeLight)
	if light.IsDark {
		t.Error("NewTheme(light) should not be dark")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(ThemeLight)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Sidebar", theme.Sidebar},
		{"PageTitle", theme.PageTitle},
		{"ModalBox", theme.ModalBox},
		{"StatusBar", theme.StatusBar},
		{"ToastBox", theme.ToastBox},
		{"TimerExpired", theme.TimerExpired},
	}
	for _, s := range styles {
		if s.style.Render("test") == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

func TestNoticeIndicators(t *testing.T) {
	theme := NewTheme(ThemeLight)

	tests := []struct {
		kind view.NoticeKind
		want string
	}{
		{view.NoticeSuccess, StatusIndicators.Success},
		{view.NoticeWarning, StatusIndicators.Warning},
		{view.NoticeError, StatusIndicators.Error},
		{view.NoticeInfo, StatusIndicators.Info},
	}
	for _, tt := range tests {
		if _, got := theme.Notice(tt.kind); got != tt.want {
			t.Errorf("Notice(%v) indicator = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme(ThemeLight)

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{160, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
	}
}
