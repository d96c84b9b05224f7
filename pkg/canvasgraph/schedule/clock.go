// Package schedule provides explicit task scheduling for the canvas
// engine: a clock abstraction, a cancel-and-reschedule debouncer for
// coalescing high-frequency edits, and a stagger queue for spacing out
// batch dispatches.
//
// All timing behavior routes through the Clock interface so tests can
// drive it with a virtual clock instead of real timers.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time for schedulable work.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run after d elapses and returns a Timer
	// that can cancel it.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still
	// pending; false means it already fired or was already stopped.
	Stop() bool
}

// realClock implements Clock with the runtime's timers.
type realClock struct{}

// NewClock returns a Clock backed by real time.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FakeClock is a manually advanced Clock for tests. Timers fire
// synchronously inside Advance, in deadline order.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

// NewFakeClock creates a FakeClock starting at the given time.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at now+d on the fake timeline.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the fake time forward, firing every timer whose deadline
// falls within the window. Timers scheduled by firing callbacks are
// honored if they also fall within the window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.nextBefore(target)
		if t == nil {
			break
		}
		c.mu.Lock()
		c.now = t.at
		c.mu.Unlock()
		t.f()
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// PendingCount returns the number of unfired timers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// nextBefore pops the earliest pending timer at or before the target
// time, or nil if none qualifies.
func (c *FakeClock) nextBefore(target time.Time) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return nil
	}
	sort.SliceStable(c.pending, func(i, j int) bool {
		return c.pending[i].at.Before(c.pending[j].at)
	})
	t := c.pending[0]
	if t.at.After(target) {
		return nil
	}
	c.pending = c.pending[1:]
	return t
}

// fakeTimer is a FakeClock timer entry.
type fakeTimer struct {
	clock *FakeClock
	at    time.Time
	f     func()
}

// Stop removes the timer from the pending set.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	for i, p := range t.clock.pending {
		if p == t {
			t.clock.pending = append(t.clock.pending[:i], t.clock.pending[i+1:]...)
			return true
		}
	}
	return false
}
