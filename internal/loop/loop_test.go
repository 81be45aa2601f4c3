// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOOP TESTS
// =============================================================================

func TestLoop_RunsEventsInOrder(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not drain events")
	}
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestLoop_PostAfterCloseIsDropped(t *testing.T) {
	l := New()
	l.Close()
	l.Close()

	var ran atomic.Bool
	l.Post(func() { ran.Store(true) })
	require.False(t, ran.Load())
}

func TestLoop_StoppedTimerNeverFires(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var fires atomic.Int32
	timer := l.Every(5*time.Millisecond, func() { fires.Add(1) })
	time.Sleep(30 * time.Millisecond)

	stopped := make(chan int32)
	l.Post(func() {
		timer.Stop()
		stopped <- fires.Load()
	})
	atStop := <-stopped

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, atStop, fires.Load(), "timer fired after Stop")
	require.False(t, timer.Stop())
}

func TestLoop_AfterFiresOnce(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{}, 2)
	timer := l.After(5*time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("After timer did not fire")
	}
	require.False(t, timer.Stop(), "Stop after fire should report false")
}

// =============================================================================
// MANUAL RUNTIME TESTS
// =============================================================================

func TestManual_AdvanceFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var got []string
	m.Every(time.Second, func() { got = append(got, "tick") })
	m.Every(3*time.Second, func() { got = append(got, "sync") })
	m.After(2*time.Second, func() { got = append(got, "once") })

	m.Advance(3 * time.Second)

	require.Equal(t, []string{"tick", "tick", "once", "tick", "sync"}, got)
	require.Equal(t, time.Unix(3, 0), m.Now())
}

func TestManual_StopInsideCallback(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var count int
	var timer Timer
	timer = m.Every(time.Second, func() {
		count++
		if count == 2 {
			timer.Stop()
		}
	})

	m.Advance(10 * time.Second)
	require.Equal(t, 2, count)
	require.Equal(t, 0, m.ActiveTimers())
}

func TestAwait_DeliversOnLoop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var got int
	var gotErr error
	Await(m, func() (int, error) { return 42, errors.New("boom") }, func(v int, err error) {
		got, gotErr = v, err
	})

	require.Equal(t, 1, m.Pending(), "result should be queued, not applied inline")
	m.Drain()
	require.Equal(t, 42, got)
	require.EqualError(t, gotErr, "boom")
}
