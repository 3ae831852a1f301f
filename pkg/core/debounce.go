package core

import (
	"sync"
	"time"
)

// debouncer holds at most one pending call. Re-arming drops the pending
// call; only the generation armed last may fire.
type debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	stop      func() bool
	gen       uint64
	cancelled bool
}

func (d *debouncer) arm(fire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancelled {
		return
	}
	if d.stop != nil {
		d.stop()
	}
	d.gen++
	gen := d.gen
	d.stop = currentClock().AfterFunc(d.delay, func() {
		runOnUIThread(func() {
			if d.take(gen) {
				fire()
			}
		})
	})
}

// take claims the pending call for generation gen.
func (d *debouncer) take(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled || d.gen != gen {
		return false
	}
	d.stop = nil
	d.gen++
	return true
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = true
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
}
