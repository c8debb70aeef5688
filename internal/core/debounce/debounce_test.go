package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ptime "smartpaste/internal/platform/time"
)

func TestAllow_DropsInsideWindow(t *testing.T) {
	clk := ptime.NewManual(time.Unix(1_700_000_000, 0))
	w := New(0, clk)
	if w.Duration() != DefaultWindow {
		t.Fatalf("Duration = %v", w.Duration())
	}

	if !w.Allow() {
		t.Fatal("first event should pass")
	}
	clk.Advance(200 * time.Millisecond)
	if w.Allow() {
		t.Fatal("event at +200ms should be dropped")
	}
	clk.Advance(299 * time.Millisecond)
	if w.Allow() {
		t.Fatal("event at +499ms should be dropped")
	}
	clk.Advance(1 * time.Millisecond)
	if !w.Allow() {
		t.Fatal("event at +500ms should pass")
	}
}

func TestAllow_DroppedEventsDoNotExtendWindow(t *testing.T) {
	clk := ptime.NewManual(time.Unix(0, 0))
	w := New(100*time.Millisecond, clk)

	w.Allow()
	for i := 0; i < 9; i++ {
		clk.Advance(10 * time.Millisecond)
		if w.Allow() {
			t.Fatalf("event %d inside window passed", i)
		}
	}
	clk.Advance(10 * time.Millisecond)
	if !w.Allow() {
		t.Fatal("window should be measured from the accepted event")
	}
}

func TestReset(t *testing.T) {
	clk := ptime.NewManual(time.Unix(0, 0))
	w := New(time.Second, clk)
	w.Allow()
	if w.Allow() {
		t.Fatal("second event should be dropped")
	}
	w.Reset()
	if !w.Allow() {
		t.Fatal("event after Reset should pass")
	}
}

func TestAllow_ConcurrentSingleWinner(t *testing.T) {
	clk := ptime.NewManual(time.Unix(0, 0))
	w := New(time.Second, clk)

	var passed int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.Allow() {
				atomic.AddInt32(&passed, 1)
			}
		}()
	}
	wg.Wait()
	if passed != 1 {
		t.Fatalf("passed = %d, want 1", passed)
	}
}

func TestAllowAt_UsesEventStamps(t *testing.T) {
	clk := ptime.NewManual(time.Unix(0, 0))
	w := New(time.Second, clk)
	base := time.Unix(100, 0)

	if !w.AllowAt(base) {
		t.Fatal("first stamped event should pass")
	}
	if w.AllowAt(base.Add(999 * time.Millisecond)) {
		t.Fatal("stamp inside the window should be dropped")
	}
	if w.AllowAt(base.Add(-time.Minute)) {
		t.Fatal("stamp before the last accepted event should be dropped")
	}
	if !w.AllowAt(base.Add(time.Second)) {
		t.Fatal("stamp at the window edge should pass")
	}
}
