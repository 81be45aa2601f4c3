// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Runtime driven by a virtual clock.
//
// Posted events queue until Drain or Advance runs them. Go runs work inline on
// the caller, so an Await completes as soon as the queue is drained. Advance
// moves the clock forward and fires due timers in deadline order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    int
}

// NewManual creates a manual runtime starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	m        *Manual
	id       int
	next     time.Time
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Post queues fn.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Go runs fn immediately on the calling goroutine.
func (m *Manual) Go(fn func()) {
	fn()
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers a repeating timer.
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	return m.add(d, d, fn)
}

// After registers a one-shot timer.
func (m *Manual) After(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, id: m.seq, next: m.now.Add(d), interval: interval, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Drain runs queued events, including ones they post, until the queue is empty.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
	}
}

// Pending returns the number of queued events.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// ActiveTimers returns the number of timers that can still fire.
func (m *Manual) ActiveTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every due timer on the way.
// Each fire is queued and drained before the next one.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			m.Drain()
			return
		}
		m.now = t.next
		if t.interval > 0 {
			t.next = t.next.Add(t.interval)
		} else {
			t.stopped = true
		}
		fn := t.fn
		m.queue = append(m.queue, fn)
		m.mu.Unlock()
		m.Drain()
	}
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].next.Equal(live[j].next) {
			return live[i].id < live[j].id
		}
		return live[i].next.Before(live[j].next)
	})
	if live[0].next.After(target) {
		return nil
	}
	return live[0]
}
