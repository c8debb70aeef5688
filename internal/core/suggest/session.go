// Package suggest owns the suggestion lifecycle for one client.
// A session is Idle or Active; Active holds one detection result and exactly one live dismiss
// timer. Every transition out of Active cancels that timer, and each Active state carries a
// generation number so a timer that fires late can never clear a newer suggestion
package suggest

import (
	"context"
	"errors"
	"sync"
	"time"

	"smartpaste/internal/core/classifier"
	"smartpaste/internal/platform/logger"
	ptime "smartpaste/internal/platform/time"
)

// DefaultDismissTimeout is how long an Active suggestion stays visible
const DefaultDismissTimeout = 5 * time.Second

var (
	// ErrIdle is returned by Accept when there is nothing to accept
	ErrIdle = errors.New("suggest: no active suggestion")
	// ErrClosed is returned once the session has been disposed
	ErrClosed = errors.New("suggest: session closed")
)

// Cause names the transition that produced a snapshot
type Cause string

const (
	CauseOffered   Cause = "offered"
	CauseReplaced  Cause = "replaced"
	CauseExpired   Cause = "expired"
	CauseDismissed Cause = "dismissed"
	CauseAccepted  Cause = "accepted"
	CauseNavigated Cause = "navigated" // auto-navigate, Active was never entered
	CauseClosed    Cause = "closed"
)

// Snapshot is a point-in-time view of the session
type Snapshot struct {
	Active     bool               `json:"is_active"`
	Result     *classifier.Result `json:"current_result"`
	Generation uint64             `json:"generation"`
	ExpiresAt  *time.Time         `json:"expires_at,omitempty"`
	Cause      Cause              `json:"cause,omitempty"`
}

// Options configures a Session
type Options struct {
	DismissTimeout time.Duration // <= 0 uses DefaultDismissTimeout
	AutoNavigate   bool
	Clock          ptime.Clock
}

// Session is the Idle/Active state machine for one client
type Session struct {
	mu  sync.Mutex
	nav Navigator
	clk ptime.Clock
	log *logger.Logger

	timeout time.Duration
	auto    bool

	result  *classifier.Result // nil when Idle
	timer   ptime.Timer        // non-nil only while Active
	expires time.Time
	gen     uint64
	closed  bool

	subs   map[uint64]func(Snapshot)
	nextID uint64
}

// New creates an Idle session; a nil nav makes Accept a state-only transition
func New(nav Navigator, opts Options) *Session {
	if nav == nil {
		nav = nopNavigator{}
	}
	if opts.Clock == nil {
		opts.Clock = ptime.System()
	}
	if opts.DismissTimeout <= 0 {
		opts.DismissTimeout = DefaultDismissTimeout
	}
	return &Session{
		nav:     nav,
		clk:     opts.Clock,
		log:     logger.Named("smartpaste.session"),
		timeout: opts.DismissTimeout,
		auto:    opts.AutoNavigate,
		subs:    map[uint64]func(Snapshot){},
	}
}

// Offer presents a detection result
// with auto-navigate on and onHub set the navigator runs immediately and the session stays Idle,
// otherwise the session becomes Active, replacing and cancelling any previous suggestion.
// A nil result is a no-op
func (s *Session) Offer(ctx context.Context, res *classifier.Result, onHub bool) (navigated bool, err error) {
	if res == nil {
		return false, nil
	}
	r := *res

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}

	if s.auto && onHub {
		s.clearLocked()
		snap, subs := s.snapshotLocked(CauseNavigated), s.subscribersLocked()
		s.mu.Unlock()

		s.log.Debug().Str("target", r.TargetID).Msg("auto-navigate")
		publish(subs, snap)
		if err := s.nav.Navigate(ctx, r.TargetID); err != nil {
			s.log.Warn().Err(err).Str("target", r.TargetID).Msg("auto-navigate failed")
			return false, err
		}
		return true, nil
	}

	cause := CauseOffered
	if s.result != nil {
		cause = CauseReplaced
	}
	s.clearLocked()

	s.gen++
	gen := s.gen
	s.result = &r
	s.expires = s.clk.Now().Add(s.timeout)
	s.timer = s.clk.AfterFunc(s.timeout, func() { s.expire(gen) })

	snap, subs := s.snapshotLocked(cause), s.subscribersLocked()
	s.mu.Unlock()

	s.log.Debug().Str("target", r.TargetID).Uint64("gen", gen).Str("cause", string(cause)).Msg("suggestion active")
	publish(subs, snap)
	return false, nil
}

// expire is the dismiss timer callback for generation gen
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if s.closed || s.result == nil || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.result = nil
	s.expires = time.Time{}
	snap, subs := s.snapshotLocked(CauseExpired), s.subscribersLocked()
	s.mu.Unlock()

	s.log.Debug().Uint64("gen", gen).Msg("suggestion expired")
	publish(subs, snap)
}

// Dismiss returns the session to Idle, reporting whether a suggestion was showing
func (s *Session) Dismiss() bool {
	s.mu.Lock()
	if s.closed || s.result == nil {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	snap, subs := s.snapshotLocked(CauseDismissed), s.subscribersLocked()
	s.mu.Unlock()

	s.log.Debug().Msg("suggestion dismissed")
	publish(subs, snap)
	return true
}

// Accept navigates to the active suggestion's target and returns to Idle
// the accepted result is returned even when the navigator fails
func (s *Session) Accept(ctx context.Context) (*classifier.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.result == nil {
		s.mu.Unlock()
		return nil, ErrIdle
	}
	res := *s.result
	s.clearLocked()
	snap, subs := s.snapshotLocked(CauseAccepted), s.subscribersLocked()
	s.mu.Unlock()

	// the navigator runs outside the lock so it may read the session
	err := s.nav.Navigate(ctx, res.TargetID)
	if err != nil {
		s.log.Warn().Err(err).Str("target", res.TargetID).Msg("navigate failed")
	}
	publish(subs, snap)
	return &res, err
}

// IsActive reports whether a suggestion is showing
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// Current returns a copy of the active result, nil when Idle
func (s *Session) Current() *classifier.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked("")
}

// Subscribe registers fn for every transition and returns the unsubscribe func
// fn runs on the goroutine that caused the transition, outside the session lock
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close disposes the session: the timer is cancelled, subscribers get a final
// snapshot and are dropped, and later calls return ErrClosed
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	s.closed = true
	snap, subs := s.snapshotLocked(CauseClosed), s.subscribersLocked()
	s.subs = map[uint64]func(Snapshot){}
	s.mu.Unlock()

	publish(subs, snap)
}

// Closed reports whether Close has run
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// clearLocked cancels the live timer and leaves Active; the generation moves on so a
// callback that already fired finds itself stale
func (s *Session) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.result != nil {
		s.gen++
	}
	s.result = nil
	s.expires = time.Time{}
}

func (s *Session) snapshotLocked(cause Cause) Snapshot {
	snap := Snapshot{Active: s.result != nil, Generation: s.gen, Cause: cause}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
		exp := s.expires
		snap.ExpiresAt = &exp
	}
	return snap
}

func (s *Session) subscribersLocked() []func(Snapshot) {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]func(Snapshot), 0, len(s.subs))
	for id := uint64(1); id <= s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func publish(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
