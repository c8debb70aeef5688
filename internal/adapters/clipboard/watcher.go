// Package clipboard turns OS clipboard changes into paste events
// there is no paste event outside a browser, so the watcher polls and treats each change
// of clipboard text as an ambient paste
package clipboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"smartpaste/internal/core/pastegate"
	"smartpaste/internal/platform/logger"

	"github.com/atotto/clipboard"
)

// DefaultInterval is the poll period
const DefaultInterval = 250 * time.Millisecond

// ErrUnsupported is returned by Run when no clipboard utility is available
var ErrUnsupported = errors.New("clipboard: unsupported on this system")

// unsupported reports whether atotto/clipboard found no clipboard utility
var unsupported = func() bool { return clipboard.Unsupported }

// Options configures a Watcher
type Options struct {
	Interval    time.Duration
	Surface     string // reported on every event
	EmitInitial bool   // treat the content present at startup as a paste

	// Read replaces the system clipboard reader, nil uses atotto/clipboard
	Read func() (string, error)
}

// Watcher is a pastegate.Source backed by the system clipboard
type Watcher struct {
	interval    time.Duration
	surface     string
	emitInitial bool
	read        func() (string, error)
	system      bool // reading the OS clipboard through atotto/clipboard
	now         func() time.Time
	log         *logger.Logger

	mu      sync.Mutex
	subs    map[uint64]func(pastegate.Event)
	nextID  uint64
	last    string
	primed  bool
	failing bool
}

// New creates a Watcher reading the system clipboard
func New(opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	system := opts.Read == nil
	if system {
		opts.Read = clipboard.ReadAll
	}
	return &Watcher{
		interval:    opts.Interval,
		surface:     opts.Surface,
		emitInitial: opts.EmitInitial,
		read:        opts.Read,
		system:      system,
		now:         time.Now,
		log:         logger.Named("clipboard.watch"),
		subs:        map[uint64]func(pastegate.Event){},
	}
}

// Subscribe registers fn for paste events
func (w *Watcher) Subscribe(fn func(pastegate.Event)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.subs[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Poll reads the clipboard once and emits an event if the text changed
// a failed read emits one denied event until a read succeeds again
func (w *Watcher) Poll() {
	text, err := w.read()

	w.mu.Lock()
	var ev *pastegate.Event
	switch {
	case err != nil:
		if !w.failing {
			w.failing = true
			w.log.Warn().Err(err).Msg("clipboard read failed")
			ev = &pastegate.Event{Denied: true}
		}
	case !w.primed:
		w.primed, w.failing, w.last = true, false, text
		if w.emitInitial && text != "" {
			ev = &pastegate.Event{Text: text}
		}
	case text != w.last:
		w.failing, w.last = false, text
		ev = &pastegate.Event{Text: text}
	default:
		w.failing = false
	}
	var subs []func(pastegate.Event)
	if ev != nil {
		ev.Target = pastegate.Target{Kind: pastegate.KindAmbient}
		ev.Surface = w.surface
		ev.At = w.now()
		for id := uint64(1); id <= w.nextID; id++ {
			if fn, ok := w.subs[id]; ok {
				subs = append(subs, fn)
			}
		}
	}
	w.mu.Unlock()

	for _, fn := range subs {
		fn(*ev)
	}
}

// Run polls until ctx is done
// ErrUnsupported only applies to the system reader, an injected Options.Read always runs
func (w *Watcher) Run(ctx context.Context) error {
	if w.system && unsupported() {
		return ErrUnsupported
	}
	t := time.NewTicker(w.interval)
	defer t.Stop()

	w.log.Info().Dur("interval", w.interval).Msg("watching clipboard")
	w.Poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.Poll()
		}
	}
}
