// Package debounce drops bursts of events that arrive inside a fixed window
package debounce

import (
	"sync"
	"time"

	ptime "smartpaste/internal/platform/time"
)

// DefaultWindow is the window used when none is configured
const DefaultWindow = 500 * time.Millisecond

// Window admits at most one event per window
// the window is measured from the last accepted event, dropped events never extend it
type Window struct {
	mu     sync.Mutex
	clock  ptime.Clock
	window time.Duration
	last   time.Time
	seen   bool
}

// New creates a Window; d <= 0 uses DefaultWindow and a nil clock uses the system clock
func New(d time.Duration, clock ptime.Clock) *Window {
	if d <= 0 {
		d = DefaultWindow
	}
	if clock == nil {
		clock = ptime.System()
	}
	return &Window{clock: clock, window: d}
}

// Duration returns the configured window
func (w *Window) Duration() time.Duration { return w.window }

// Allow reports whether an event arriving now is admitted
func (w *Window) Allow() bool { return w.AllowAt(w.clock.Now()) }

// AllowAt reports whether an event stamped at now is admitted
// a stamp earlier than the last accepted event counts as inside the window
func (w *Window) AllowAt(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen && now.Sub(w.last) < w.window {
		return false
	}
	w.last, w.seen = now, true
	return true
}

// Reset forgets the last accepted event
func (w *Window) Reset() {
	w.mu.Lock()
	w.last, w.seen = time.Time{}, false
	w.mu.Unlock()
}
