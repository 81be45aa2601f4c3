// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// SINK MESSAGES
// =============================================================================

type (
	noticeMsg   view.Notice
	userMsg     view.UserBadge
	timerMsg    view.Timer
	menuMsg     view.Menu
	collapseMsg struct{}
	pageMsg     view.Page
	modalMsg    view.Modal
	hideMsg     string
	themeMsg    string
	redirectMsg string
)

// =============================================================================
// BRIDGE
// =============================================================================

// Bridge is the view.Sink of the terminal UI. Calls arrive on the event loop
// and are queued as Bubble Tea messages; a forwarding goroutine hands them to
// the program, so the event loop never waits on rendering.
type Bridge struct {
	mu     sync.Mutex
	queue  []tea.Msg
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

var _ view.Sink = (*Bridge)(nil)

// NewBridge creates a bridge that queues until Attach.
func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1), done: make(chan struct{})}
}

// Attach starts forwarding queued and future messages to send, usually
// (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	go func() {
		for {
			select {
			case <-b.done:
				return
			case <-b.wake:
			}
			for _, msg := range b.Drain() {
				send(msg)
			}
		}
	}()
	b.signal()
}

// Close stops forwarding. Later calls are dropped.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
}

// Drain removes and returns the queued messages.
func (b *Bridge) Drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

func (b *Bridge) push(msg tea.Msg) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()
	b.signal()
}

func (b *Bridge) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) Notify(n view.Notice)       { b.push(noticeMsg(n)) }
func (b *Bridge) ShowUser(u view.UserBadge)  { b.push(userMsg(u)) }
func (b *Bridge) ShowTimer(t view.Timer)     { b.push(timerMsg(t)) }
func (b *Bridge) ShowMenu(m view.Menu)       { b.push(menuMsg(m)) }
func (b *Bridge) CollapseSidebar()           { b.push(collapseMsg{}) }
func (b *Bridge) ShowPage(p view.Page)       { b.push(pageMsg(p)) }
func (b *Bridge) ShowModal(m view.Modal)     { b.push(modalMsg(m)) }
func (b *Bridge) HideModal(id string)        { b.push(hideMsg(id)) }
func (b *Bridge) ApplyTheme(theme string)    { b.push(themeMsg(theme)) }
func (b *Bridge) RedirectToLogin(why string) { b.push(redirectMsg(why)) }
