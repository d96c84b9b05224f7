package schedule

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls into one. Each Trigger cancels and
// supersedes any pending call, so N triggers inside the delay window
// produce exactly one firing, with the function from the final trigger.
//
// Debouncer is safe for concurrent use. A stopped debouncer ignores
// further triggers, which is how card unmount prevents stale writes to
// a deleted node.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu      sync.Mutex
	timer   Timer
	pending func()
	stopped bool
}

// NewDebouncer creates a debouncer with the given delay.
// Panics if clock is nil or delay is not positive.
func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		panic("schedule: clock cannot be nil")
	}
	if delay <= 0 {
		panic("schedule: debounce delay must be positive")
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger schedules fn to run after the delay, cancelling any pending
// call first.
func (d *Debouncer) Trigger(fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, d.fire)
}

// Flush runs the pending call immediately, if any, cancelling its timer.
// Used to force a content commit before a dependent action like "run".
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending call and rejects future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// Pending reports whether a call is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// fire runs the pending call from the timer path.
func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}
