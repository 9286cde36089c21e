package autorun

import (
	"sync"
	"time"
)

// Debouncer holds a single pending call. Scheduling replaces whatever was
// pending; a call that already started is left alone.
type Debouncer struct {
	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
}

// Schedule runs action after delay unless another Schedule or Cancel comes first.
func (d *Debouncer) Schedule(action func(), delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	generation := d.generation

	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// Stop cannot recall a timer whose callback is already waiting on mu.
		if d.generation != generation {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		action()
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// stopLocked must be called with mu held.
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}
