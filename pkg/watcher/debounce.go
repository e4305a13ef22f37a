package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback once the
// burst has been quiet for the configured duration. Build systems rewrite an
// ELF file several times in quick succession (compile, link, objcopy), and
// reloading on every intermediate write is wasted work.
type Debouncer struct {
	mu    sync.Mutex
	after time.Duration
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given quiet period. A zero or
// negative duration makes Trigger call back synchronously.
func NewDebouncer(after time.Duration) *Debouncer {
	return &Debouncer{after: after}
}

// Trigger schedules fn after the quiet period, replacing any previously
// scheduled call.
func (d *Debouncer) Trigger(fn func()) {
	if d.after <= 0 {
		fn()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.after, fn)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
