// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loop provides the single-threaded event loop the portal core runs on.
//
// Every state change in the core (ticks, resync results, navigation, dialog
// buttons) happens inside a function posted to the loop, so core types need no
// locking. Blocking work runs off-loop through Executor.Go and reports back with
// Post, which is what Await wraps.
package loop

import (
	"context"
	"sync"
	"time"
)

// Executor runs callbacks on the loop and blocking work beside it.
type Executor interface {
	// Post queues fn to run on the loop. Safe from any goroutine.
	Post(fn func())
	// Go runs fn outside the loop.
	Go(fn func())
}

// Timer is a cancellable timer handle.
type Timer interface {
	// Stop cancels the timer. It returns false if the timer was already stopped
	// or a one-shot timer already fired.
	Stop() bool
}

// Scheduler creates timers whose callbacks run on the loop.
type Scheduler interface {
	Every(d time.Duration, fn func()) Timer
	After(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Runtime is an Executor that can also schedule timers.
type Runtime interface {
	Executor
	Scheduler
}

// Await runs work off-loop and delivers its result to then on the loop.
func Await[T any](ex Executor, work func() (T, error), then func(T, error)) {
	ex.Go(func() {
		v, err := work()
		ex.Post(func() { then(v, err) })
	})
}

// =============================================================================
// LOOP
// =============================================================================

// DefaultQueueSize is the event buffer of a Loop.
const DefaultQueueSize = 256

// Loop is a cooperative scheduler that runs posted events one at a time.
type Loop struct {
	events chan func()
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	running bool
}

// New creates a loop. Call Run to start draining events.
func New() *Loop {
	return &Loop{
		events: make(chan func(), DefaultQueueSize),
		done:   make(chan struct{}),
	}
}

// Post queues fn. Events posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Go runs fn on a new goroutine.
func (l *Loop) Go(fn func()) {
	go fn()
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Run drains events until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		case fn := <-l.events:
			fn()
		}
	}
}

// Close stops the loop. Pending events are discarded.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

// =============================================================================
// TIMERS
// =============================================================================

// loopTimer posts fn to the loop on every fire. The stopped flag is checked on
// the loop, so an event already queued when Stop is called never runs fn.
type loopTimer struct {
	mu      sync.Mutex
	stopped bool
	once    bool
	fired   bool
	ticker  *time.Ticker
	timer   *time.Timer
	quit    chan struct{}
}

func (t *loopTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || (t.once && t.fired) {
		t.stopped = true
		return false
	}
	t.stopped = true
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.quit)
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

// Every fires fn on the loop every d until the timer is stopped.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &loopTimer{ticker: time.NewTicker(d), quit: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.quit:
				return
			case <-l.done:
				return
			case <-t.ticker.C:
				l.Post(func() {
					if t.active() {
						fn()
					}
				})
			}
		}
	}()
	return t
}

// After fires fn on the loop once after d.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &loopTimer{once: true}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			t.fired = true
			t.mu.Unlock()
			fn()
		})
	})
	return t
}
