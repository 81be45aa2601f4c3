// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import "sync"

// Recorder is a Sink that keeps everything it receives. It backs headless runs
// and tests.
type Recorder struct {
	mu sync.Mutex

	Notices    []Notice
	User       UserBadge
	Timers     []Timer
	Menus      []Menu
	Collapses  int
	Pages      []Page
	Modals     []Modal
	Hidden     []string
	Theme      string
	Redirects  []string
	liveModals map[string]Modal
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{liveModals: make(map[string]Modal)}
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, n)
}

func (r *Recorder) ShowUser(u UserBadge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.User = u
}

func (r *Recorder) ShowTimer(t Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Timers = append(r.Timers, t)
}

func (r *Recorder) ShowMenu(m Menu) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Menus = append(r.Menus, m)
}

func (r *Recorder) CollapseSidebar() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Collapses++
}

func (r *Recorder) ShowPage(p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pages = append(r.Pages, p)
}

func (r *Recorder) ShowModal(m Modal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Modals = append(r.Modals, m)
	r.liveModals[m.ID] = m
}

func (r *Recorder) HideModal(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Hidden = append(r.Hidden, id)
	delete(r.liveModals, id)
}

func (r *Recorder) ApplyTheme(theme string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Theme = theme
}

func (r *Recorder) RedirectToLogin(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Redirects = append(r.Redirects, reason)
}

// LiveModals returns the dialogs shown and not yet hidden.
func (r *Recorder) LiveModals() []Modal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Modal, 0, len(r.liveModals))
	for _, m := range r.liveModals {
		out = append(out, m)
	}
	return out
}

// LastTimer returns the most recent countdown display.
func (r *Recorder) LastTimer() (Timer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Timers) == 0 {
		return Timer{}, false
	}
	return r.Timers[len(r.Timers)-1], true
}

// LastPage returns the most recent page.
func (r *Recorder) LastPage() (Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Pages) == 0 {
		return Page{}, false
	}
	return r.Pages[len(r.Pages)-1], true
}

// LastNotice returns the most recent notice.
func (r *Recorder) LastNotice() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Notices) == 0 {
		return Notice{}, false
	}
	return r.Notices[len(r.Notices)-1], true
}

// NoticeCount counts notices of kind k.
func (r *Recorder) NoticeCount(k NoticeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.Notices {
		if notice.Kind == k {
			n++
		}
	}
	return n
}
