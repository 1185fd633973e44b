package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// debouncer runs fn once after window has passed without another trigger.
// At most one timer is pending at any time.
type debouncer struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	window time.Duration
	fn     func()
	timer  clockwork.Timer
	gen    uint64 // bumped on every trigger and cancel; stale timers compare against it
	closed bool
}

func newDebouncer(clock clockwork.Clock, window time.Duration, fn func()) *debouncer {
	return &debouncer{clock: clock, window: window, fn: fn}
}

// trigger cancels the pending timer, if any, and schedules a new one.
func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(gen) })
}

func (d *debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that already expired when it was stopped still runs its
	// callback; only the most recent one may call fn.
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// cancel drops the pending timer and reports whether one was pending.
func (d *debouncer) cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	return pending
}

// close cancels the pending timer and ignores future triggers.
func (d *debouncer) close() bool {
	pending := d.cancel()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return pending
}

func (d *debouncer) pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
