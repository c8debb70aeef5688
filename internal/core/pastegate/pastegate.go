// Package pastegate decides which paste events reach the classifier.
// Pastes into editable fields belong to the user, denied or blank reads carry nothing to
// classify, and bursts inside the debounce window are dropped
package pastegate

import (
	"strings"
	"sync"
	"time"

	"smartpaste/internal/core/debounce"
	"smartpaste/internal/core/normalize"
	"smartpaste/internal/platform/logger"
	ptime "smartpaste/internal/platform/time"
)

// Kind classifies where a paste landed
type Kind string

const (
	KindAmbient         Kind = "ambient" // document or body, nothing focused
	KindInput           Kind = "input"
	KindTextarea        Kind = "textarea"
	KindContentEditable Kind = "contenteditable"
	KindOther           Kind = "other"
)

// Target is the element a paste event was dispatched to
type Target struct {
	Kind Kind `json:"kind"`
}

// Editable reports whether the paste belongs to an editable field
func (t Target) Editable() bool {
	switch t.Kind {
	case KindInput, KindTextarea, KindContentEditable:
		return true
	}
	return false
}

// ParseTarget maps a tag name and contenteditable flag to a Target
func ParseTarget(tag string, contentEditable bool) Target {
	if contentEditable {
		return Target{Kind: KindContentEditable}
	}
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "body", "html", "document", "#document", "ambient":
		return Target{Kind: KindAmbient}
	case "input":
		return Target{Kind: KindInput}
	case "textarea":
		return Target{Kind: KindTextarea}
	default:
		return Target{Kind: KindOther}
	}
}

// Event is one paste notification from an event source
type Event struct {
	Target  Target    `json:"target"`
	Text    string    `json:"text"`
	Denied  bool      `json:"denied"`  // clipboard read failed or was refused
	Surface string    `json:"surface"` // page or view the paste happened on
	At      time.Time `json:"at"`      // source timestamp for debounce, zero uses the gate clock
}

// Accepted is a paste that passed the gate
type Accepted struct {
	Text    string
	Surface string
}

// Verdict is the gate decision for one event
type Verdict string

const (
	VerdictAccepted  Verdict = "accepted"
	VerdictEditable  Verdict = "editable"
	VerdictEmpty     Verdict = "empty"
	VerdictDebounced Verdict = "debounced"
)

// Source delivers paste events in arrival order
type Source interface {
	Subscribe(fn func(Event)) (cancel func())
}

// SourceFunc adapts a function to Source
type SourceFunc func(fn func(Event)) (cancel func())

// Subscribe calls f
func (f SourceFunc) Subscribe(fn func(Event)) func() { return f(fn) }

// Gate filters paste events for one client
type Gate struct {
	window *debounce.Window
	log    *logger.Logger
}

// New creates a Gate with a debounce window of d on clock
func New(d time.Duration, clock ptime.Clock) *Gate {
	return &Gate{
		window: debounce.New(d, clock),
		log:    logger.Named("smartpaste.gate"),
	}
}

// Window returns the configured debounce window
func (g *Gate) Window() time.Duration { return g.window.Duration() }

// Handle applies the gate to ev
// the debounce window is only consulted for events that would otherwise be accepted
func (g *Gate) Handle(ev Event) (Accepted, Verdict) {
	if ev.Target.Editable() {
		g.log.Debug().Str("target", string(ev.Target.Kind)).Msg("paste into editable target ignored")
		return Accepted{}, VerdictEditable
	}
	if ev.Denied {
		g.log.Debug().Msg("clipboard read denied")
		return Accepted{}, VerdictEmpty
	}
	text := normalize.Clean(ev.Text)
	if text == "" {
		return Accepted{}, VerdictEmpty
	}
	if !g.admit(ev.At) {
		g.log.Debug().Dur("window", g.window.Duration()).Msg("paste debounced")
		return Accepted{}, VerdictDebounced
	}
	return Accepted{Text: text, Surface: ev.Surface}, VerdictAccepted
}

func (g *Gate) admit(at time.Time) bool {
	if at.IsZero() {
		return g.window.Allow()
	}
	return g.window.AllowAt(at)
}

// Reset clears the debounce state
func (g *Gate) Reset() { g.window.Reset() }

// Attach subscribes sink to src through the gate and returns the cancel func
// events are handled one at a time in arrival order
func (g *Gate) Attach(src Source, sink func(Accepted)) (cancel func()) {
	var mu sync.Mutex
	return src.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if acc, v := g.Handle(ev); v == VerdictAccepted {
			sink(acc)
		}
	})
}
