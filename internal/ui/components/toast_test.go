// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

func newTestToasts(d time.Duration) (*ToastManager, *time.Time) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	m := NewToastManager(d)
	m.now = func() time.Time { return now }
	return m, &now
}

// =============================================================================
// TOAST MANAGER TESTS
// =============================================================================

func TestToastManager_NewestFirst(t *testing.T) {
	m, _ := newTestToasts(5 * time.Second)

	m.Add(view.Info("Exporting academics..."))
	m.Add(view.Success("Saved to /tmp/academics.csv"))

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("Expected 2 toasts, got %d", len(toasts))
	}
	if toasts[0].Notice.Kind != view.NoticeSuccess {
		t.Errorf("Expected newest toast first, got %v", toasts[0].Notice.Kind)
	}

	m.Dismiss()
	if got := m.Toasts(); len(got) != 1 || got[0].Notice.Kind != view.NoticeInfo {
		t.Errorf("Dismiss should remove the newest toast, left %+v", got)
	}
}

func TestToastManager_Lifetimes(t *testing.T) {
	m, now := newTestToasts(4 * time.Second)

	m.Add(view.Info("info"))
	m.Add(view.Warning("warning"))
	m.Add(view.Error("error"))

	*now = now.Add(5 * time.Second)
	if got := len(m.Tick()); got != 2 {
		t.Errorf("after 5s expected warning and error, got %d toasts", got)
	}
	*now = now.Add(2 * time.Second)
	toasts := m.Tick()
	if len(toasts) != 1 || toasts[0].Notice.Kind != view.NoticeError {
		t.Errorf("after 7s expected only the error, got %+v", toasts)
	}
	*now = now.Add(2 * time.Second)
	if m.Tick(); len(m.Toasts()) != 0 {
		t.Error("all toasts should have expired after 9s")
	}
}

func TestToastManager_CollapsesRepeats(t *testing.T) {
	m, _ := newTestToasts(time.Second)

	a := m.Add(view.Warning("Please change your password first"))
	b := m.Add(view.Warning("Please change your password first"))
	if a != b || len(m.Toasts()) != 1 {
		t.Errorf("repeat notice should refresh, got ids %d/%d and %d toasts", a, b, len(m.Toasts()))
	}
}

func TestToastManager_MaxToasts(t *testing.T) {
	m, _ := newTestToasts(time.Second)
	for i := 0; i < MaxToasts+3; i++ {
		m.Add(view.Info(strings.Repeat("x", i+1)))
	}
	if got := len(m.Toasts()); got != MaxToasts {
		t.Errorf("Expected %d toasts, got %d", MaxToasts, got)
	}
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestRenderToast_IncludesIndicatorAndMessage(t *testing.T) {
	theme := styles.NewTheme(styles.ThemeLight)
	now := time.Now()
	toast := Toast{ID: 1, Notice: view.Error("Network error. Please check your connection."), CreatedAt: now, Duration: 3 * time.Second}

	out := RenderToast(theme, toast, now, 120)
	for _, want := range []string{styles.StatusIndicators.Error, "Network error.", "[x] Dismiss", "3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("toast %q missing %q", out, want)
		}
	}
}

func TestRenderToastStack_Empty(t *testing.T) {
	if RenderToastStack(styles.NewTheme(styles.ThemeLight), nil, time.Now(), 80, 24) != "" {
		t.Error("empty stack should render nothing")
	}
}

func TestToastLines(t *testing.T) {
	got := ToastLines([]Toast{{Notice: view.Success("saved")}, {Notice: view.Info("working")}})
	if got != "[OK] saved\n[i] working" {
		t.Errorf("ToastLines = %q", got)
	}
}
