package selection

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long search text must be stable before it is committed.
const DefaultQuietPeriod = 500 * time.Millisecond

// Debouncer runs the most recently triggered function after a quiet period.
// Every Trigger cancels the previous pending run; a timer that already fired
// but lost the race against a newer Trigger does nothing.
type Debouncer struct {
	quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A non-positive quiet uses DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn and cancels whatever was pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending run, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// QuietPeriod returns the configured delay.
func (d *Debouncer) QuietPeriod() time.Duration {
	return d.quiet
}
