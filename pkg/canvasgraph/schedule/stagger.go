package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is one unit of staggered work.
type Task struct {
	// ID identifies the task in error callbacks (typically a node ID).
	ID string
	// Do performs the work. Errors are reported, never retried.
	Do func(ctx context.Context) error
}

// Stagger dispatches batches of tasks spaced a fixed delay apart,
// instead of firing them in a single burst that races the external
// layer's cleanup side effects. Task failures are isolated: one failing
// task never blocks its siblings.
type Stagger struct {
	clock Clock
	delay time.Duration
}

// NewStagger creates a stagger queue.
// Panics if clock is nil or delay is negative. A zero delay dispatches
// all tasks immediately but still isolates failures.
func NewStagger(clock Clock, delay time.Duration) *Stagger {
	if clock == nil {
		panic("schedule: clock cannot be nil")
	}
	if delay < 0 {
		panic("schedule: stagger delay cannot be negative")
	}
	return &Stagger{clock: clock, delay: delay}
}

// Dispatch schedules task i to run at i*delay from now. The first task
// runs synchronously before Dispatch returns; the rest fire from timers.
// onError, if non-nil, receives each task's failure individually.
//
// The returned Run cancels unfired tasks on Cancel and reports overall
// completion via Done.
func (s *Stagger) Dispatch(ctx context.Context, tasks []Task, onError func(task Task, err error)) *Run {
	run := &Run{
		done:      make(chan struct{}),
		remaining: len(tasks),
	}
	if len(tasks) == 0 {
		close(run.done)
		return run
	}

	exec := func(t Task) {
		if run.cancelled() || ctx.Err() != nil {
			run.finish()
			return
		}
		if t.Do != nil {
			if err := t.Do(ctx); err != nil && onError != nil {
				onError(t, err)
			}
		}
		run.finish()
	}

	for i, t := range tasks {
		if i == 0 {
			exec(t)
			continue
		}
		t := t
		timer := s.clock.AfterFunc(time.Duration(i)*s.delay, func() { exec(t) })
		run.addTimer(timer)
	}

	return run
}

// Run tracks one in-flight staggered dispatch.
type Run struct {
	mu        sync.Mutex
	timers    []Timer
	stopped   bool
	remaining int
	done      chan struct{}
}

// Cancel stops all unfired tasks. Tasks that already ran are unaffected.
func (r *Run) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true
	for _, t := range r.timers {
		if t.Stop() {
			r.remaining--
		}
	}
	r.timers = nil
	if r.remaining <= 0 {
		r.closeDoneLocked()
	}
}

// Done returns a channel closed when every task has run or been cancelled.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

func (r *Run) addTimer(t Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, t)
}

func (r *Run) cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Run) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining--
	if r.remaining <= 0 {
		r.closeDoneLocked()
	}
}

func (r *Run) closeDoneLocked() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}
