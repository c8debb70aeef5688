package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartpaste/internal/core/classifier"
	ptime "smartpaste/internal/platform/time"
)

func (s *Session) hasTimer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

type recorder struct {
	mu      sync.Mutex
	targets []string
	err     error
}

func (r *recorder) Navigate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, id)
	return r.err
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.targets...)
}

var (
	jsonResult = &classifier.Result{TargetID: "json-formatter", Confidence: 0.95, Reason: "Valid JSON", RuleID: "json"}
	uuidResult = &classifier.Result{TargetID: "uuid-generator", Confidence: 0.90, Reason: "Looks like a UUID", RuleID: "uuid"}
)

func newSession(nav Navigator, auto bool) (*Session, *ptime.Manual) {
	clk := ptime.NewManual(time.Unix(1_700_000_000, 0))
	return New(nav, Options{Clock: clk, AutoNavigate: auto}), clk
}

func TestOffer_ExpiresAfterTimeout(t *testing.T) {
	s, clk := newSession(nil, false)
	ctx := context.Background()

	if nav, err := s.Offer(ctx, jsonResult, false); nav || err != nil {
		t.Fatalf("Offer = %v, %v", nav, err)
	}
	if !s.IsActive() || !s.hasTimer() {
		t.Fatal("expected Active with a live timer")
	}
	snap := s.Snapshot()
	if snap.ExpiresAt == nil || !snap.ExpiresAt.Equal(time.Unix(1_700_000_005, 0)) {
		t.Fatalf("ExpiresAt = %v", snap.ExpiresAt)
	}

	clk.Advance(4999 * time.Millisecond)
	if !s.IsActive() {
		t.Fatal("expired too early")
	}
	clk.Advance(2 * time.Millisecond)
	if s.IsActive() || s.Current() != nil {
		t.Fatal("expected Idle after 5001ms")
	}
	if s.hasTimer() {
		t.Fatal("timer handle should be cleared")
	}
	if clk.Pending() != 0 {
		t.Fatalf("pending timers = %d", clk.Pending())
	}
}

func TestOffer_NilIsNoop(t *testing.T) {
	s, clk := newSession(nil, false)
	if nav, err := s.Offer(context.Background(), nil, true); nav || err != nil {
		t.Fatalf("Offer(nil) = %v, %v", nav, err)
	}
	if s.IsActive() || clk.Pending() != 0 {
		t.Fatal("nil result must not change state")
	}
}

func TestOffer_ReplaceCancelsPriorTimer(t *testing.T) {
	s, clk := newSession(nil, false)
	ctx := context.Background()

	_, _ = s.Offer(ctx, jsonResult, false)
	clk.Advance(3 * time.Second)
	_, _ = s.Offer(ctx, uuidResult, false)
	if clk.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", clk.Pending())
	}

	// the first timer's deadline passes; the replacement must survive it
	clk.Advance(2500 * time.Millisecond)
	cur := s.Current()
	if cur == nil || cur.TargetID != "uuid-generator" {
		t.Fatalf("Current = %+v", cur)
	}
	clk.Advance(2500 * time.Millisecond)
	if s.IsActive() {
		t.Fatal("replacement should expire on its own schedule")
	}
}

func TestExpire_StaleGenerationIsNoop(t *testing.T) {
	s, _ := newSession(nil, false)
	ctx := context.Background()

	_, _ = s.Offer(ctx, jsonResult, false)
	stale := s.Snapshot().Generation
	_, _ = s.Offer(ctx, uuidResult, false)

	s.expire(stale)
	if cur := s.Current(); cur == nil || cur.TargetID != "uuid-generator" {
		t.Fatalf("stale timer cleared a newer suggestion: %+v", cur)
	}

	// a callback racing with Dismiss also finds itself stale
	gen := s.Snapshot().Generation
	s.Dismiss()
	_, _ = s.Offer(ctx, jsonResult, false)
	s.expire(gen)
	if !s.IsActive() {
		t.Fatal("stale timer after dismiss cleared the next suggestion")
	}
}

func TestDismiss(t *testing.T) {
	s, clk := newSession(nil, false)
	if s.Dismiss() {
		t.Fatal("Dismiss on Idle should report false")
	}
	_, _ = s.Offer(context.Background(), jsonResult, false)
	if !s.Dismiss() {
		t.Fatal("Dismiss on Active should report true")
	}
	if s.IsActive() || s.hasTimer() || clk.Pending() != 0 {
		t.Fatal("dismiss must cancel the timer and go Idle")
	}
	clk.Advance(10 * time.Second)
	if s.IsActive() {
		t.Fatal("unexpected state change")
	}
}

func TestAccept_CallsNavigator(t *testing.T) {
	nav := &recorder{}
	s, clk := newSession(nav, false)
	ctx := context.Background()

	if _, err := s.Accept(ctx); !errors.Is(err, ErrIdle) {
		t.Fatalf("Accept on Idle err = %v", err)
	}

	_, _ = s.Offer(ctx, jsonResult, false)
	res, err := s.Accept(ctx)
	if err != nil || res == nil || res.TargetID != "json-formatter" {
		t.Fatalf("Accept = %+v, %v", res, err)
	}
	if got := nav.calls(); len(got) != 1 || got[0] != "json-formatter" {
		t.Fatalf("navigator calls = %v", got)
	}
	if s.IsActive() || clk.Pending() != 0 {
		t.Fatal("accept must cancel the timer and go Idle")
	}
}

func TestAccept_NavigatorErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	nav := &recorder{err: boom}
	s, _ := newSession(nav, false)
	ctx := context.Background()

	_, _ = s.Offer(ctx, uuidResult, false)
	res, err := s.Accept(ctx)
	if !errors.Is(err, boom) || res == nil {
		t.Fatalf("Accept = %+v, %v", res, err)
	}
	if s.IsActive() {
		t.Fatal("failed navigation is not retried and does not restore state")
	}
}

func TestOffer_AutoNavigateOnHub(t *testing.T) {
	nav := &recorder{}
	s, clk := newSession(nav, true)
	ctx := context.Background()

	navigated, err := s.Offer(ctx, jsonResult, true)
	if !navigated || err != nil {
		t.Fatalf("Offer = %v, %v", navigated, err)
	}
	if s.IsActive() || clk.Pending() != 0 {
		t.Fatal("auto-navigate must not enter Active")
	}
	if got := nav.calls(); len(got) != 1 {
		t.Fatalf("navigator calls = %v", got)
	}

	// off the hub the suggestion is shown as usual
	navigated, _ = s.Offer(ctx, uuidResult, false)
	if navigated || !s.IsActive() {
		t.Fatal("expected Active off the hub")
	}
	if len(nav.calls()) != 1 {
		t.Fatal("navigator should not run off the hub")
	}
}

func TestOffer_HubWithoutAutoNavigate(t *testing.T) {
	nav := &recorder{}
	s, _ := newSession(nav, false)
	if navigated, _ := s.Offer(context.Background(), jsonResult, true); navigated {
		t.Fatal("auto-navigate is off")
	}
	if !s.IsActive() || len(nav.calls()) != 0 {
		t.Fatal("expected Active without navigation")
	}
}

func TestSubscribe_Transitions(t *testing.T) {
	s, clk := newSession(nil, false)
	ctx := context.Background()

	var causes []Cause
	cancel := s.Subscribe(func(sn Snapshot) { causes = append(causes, sn.Cause) })

	_, _ = s.Offer(ctx, jsonResult, false)
	_, _ = s.Offer(ctx, uuidResult, false)
	clk.Advance(DefaultDismissTimeout)
	_, _ = s.Offer(ctx, jsonResult, false)
	s.Dismiss()
	_, _ = s.Offer(ctx, jsonResult, false)
	_, _ = s.Accept(ctx)

	cancel()
	_, _ = s.Offer(ctx, jsonResult, false)

	want := []Cause{CauseOffered, CauseReplaced, CauseExpired, CauseOffered, CauseDismissed, CauseOffered, CauseAccepted}
	if len(causes) != len(want) {
		t.Fatalf("causes = %v, want %v", causes, want)
	}
	for i := range want {
		if causes[i] != want[i] {
			t.Fatalf("causes = %v, want %v", causes, want)
		}
	}
}

func TestSubscriber_MayReadSession(t *testing.T) {
	s, _ := newSession(nil, false)
	var seen bool
	s.Subscribe(func(Snapshot) { seen = s.IsActive() })
	_, _ = s.Offer(context.Background(), jsonResult, false)
	if !seen {
		t.Fatal("subscriber should observe the Active state")
	}
}

func TestClose(t *testing.T) {
	s, clk := newSession(nil, false)
	ctx := context.Background()

	var last Snapshot
	s.Subscribe(func(sn Snapshot) { last = sn })
	_, _ = s.Offer(ctx, jsonResult, false)

	s.Close()
	s.Close()
	if !s.Closed() || s.IsActive() || clk.Pending() != 0 {
		t.Fatal("close must cancel the timer and go Idle")
	}
	if last.Cause != CauseClosed {
		t.Fatalf("last cause = %s", last.Cause)
	}
	if _, err := s.Offer(ctx, jsonResult, false); !errors.Is(err, ErrClosed) {
		t.Fatalf("Offer after close err = %v", err)
	}
	if _, err := s.Accept(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("Accept after close err = %v", err)
	}
}

func TestNavigatorFunc(t *testing.T) {
	var got string
	var nav Navigator = NavigatorFunc(func(_ context.Context, id string) error { got = id; return nil })
	if err := nav.Navigate(context.Background(), "x"); err != nil || got != "x" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestSession_SystemClockExpiry(t *testing.T) {
	s := New(nil, Options{DismissTimeout: 20 * time.Millisecond})
	done := make(chan struct{})
	s.Subscribe(func(sn Snapshot) {
		if sn.Cause == CauseExpired {
			close(done)
		}
	})
	_, _ = s.Offer(context.Background(), jsonResult, false)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("suggestion never expired")
	}
	if s.IsActive() {
		t.Fatal("expected Idle")
	}
}
