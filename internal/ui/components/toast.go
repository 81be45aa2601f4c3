// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements non-blocking notices. They stack in the bottom-right
// corner and dismiss themselves, so the page stays usable while they show.
package components

import (
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// DefaultToastDuration is used when the manager is built with zero duration.
const DefaultToastDuration = 5 * time.Second

// MaxToasts is the number of notices visible at once.
const MaxToasts = 5

// =============================================================================
// TOAST
// =============================================================================

// Toast is one visible notice.
type Toast struct {
	ID        int
	Notice    view.Notice
	CreatedAt time.Time
	Duration  time.Duration
}

// Remaining returns the time left before the toast dismisses itself.
func (t Toast) Remaining(now time.Time) time.Duration {
	left := t.Duration - now.Sub(t.CreatedAt)
	if left < 0 {
		return 0
	}
	return left
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the visible notices, newest first.
type ToastManager struct {
	mu       sync.Mutex
	toasts   []Toast
	nextID   int
	duration time.Duration
	now      func() time.Time
}

// NewToastManager returns a manager whose info and success notices last
// duration. Warnings last half as long again and errors twice as long.
func NewToastManager(duration time.Duration) *ToastManager {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &ToastManager{nextID: 1, duration: duration, now: time.Now}
}

func (m *ToastManager) lifetime(kind view.NoticeKind) time.Duration {
	switch kind {
	case view.NoticeError:
		return 2 * m.duration
	case view.NoticeWarning:
		return m.duration * 3 / 2
	default:
		return m.duration
	}
}

// Add shows n and returns its id. Identical consecutive notices refresh the
// newest toast instead of stacking.
func (m *ToastManager) Add(n view.Notice) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.toasts) > 0 && m.toasts[0].Notice == n {
		m.toasts[0].CreatedAt = now
		return m.toasts[0].ID
	}

	t := Toast{ID: m.nextID, Notice: n, CreatedAt: now, Duration: m.lifetime(n.Kind)}
	m.nextID++
	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > MaxToasts {
		m.toasts = m.toasts[:MaxToasts]
	}
	return t.ID
}

// Dismiss removes the newest toast.
func (m *ToastManager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Tick drops expired toasts and returns the rest.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if t.Remaining(now) > 0 {
			active = append(active, t)
		}
	}
	m.toasts = active
	return m.snapshot()
}

// Toasts returns a copy of the visible toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *ToastManager) snapshot() []Toast {
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Clear removes every toast.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast.
func RenderToast(theme *styles.Theme, t Toast, now time.Time, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	style, icon := theme.Notice(t.Notice.Kind)
	content := style.Render(icon+" ") + wrapText(t.Notice.Message, maxWidth-10)

	hint := "[x] Dismiss"
	if secs := int(t.Remaining(now).Seconds()); secs > 0 {
		hint += "  " + strconv.Itoa(secs) + "s"
	}
	content += "\n" + theme.ShortcutDesc.Render(hint)

	return theme.ToastBox.
		BorderForeground(styles.NoticeBorder(t.Notice.Kind)).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack renders toasts stacked in the bottom-right corner, oldest
// on top.
func RenderToastStack(theme *styles.Theme, toasts []Toast, now time.Time, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(theme, toasts[i], now, width))
	}
	stack := lipgloss.NewStyle().MarginRight(2).
		Render(lipgloss.JoinVertical(lipgloss.Right, rendered...))

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, stack)
	}
	return stack
}

// ToastLines returns the notices as plain "[i] message" lines, newest first.
func ToastLines(toasts []Toast) string {
	lines := make([]string, len(toasts))
	for i, t := range toasts {
		lines[i] = styles.Indicator(t.Notice.Kind) + " " + t.Notice.Message
	}
	return strings.Join(lines, "\n")
}
