package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"smartpaste/internal/adapters/clipboard"
	"smartpaste/internal/adapters/navigate"
	"smartpaste/internal/core/smartpaste"
	kit "smartpaste/internal/platform/testkit"
	ptime "smartpaste/internal/platform/time"
)

type board struct{ text string }

func (b *board) read() (string, error) { return b.text, nil }

func TestWire_PrintsAndAccepts(t *testing.T) {
	clk := ptime.NewManual(time.Unix(1_700_000_000, 0))
	var out bytes.Buffer
	nav := &navigate.Writer{W: &out, BaseURL: "http://localhost:3000"}
	eng, err := smartpaste.New(smartpaste.DefaultConfig(), nav, smartpaste.WithClock(clk))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer eng.Close()

	b := &board{}
	w := clipboard.New(clipboard.Options{Read: b.read})

	stop := wire(context.Background(), eng, w, &out, true)
	defer stop()

	w.Poll() // primes
	b.text = `{"ok":true}`
	w.Poll()

	s := out.String()
	kit.MustContain(t, s, "JSON Formatter")
	kit.MustContain(t, s, "-> JSON Formatter  http://localhost:3000/tools/json-formatter")
	if eng.Session().IsActive() {
		t.Fatalf("auto-accept should leave the session idle")
	}
}

func TestWire_Expiry(t *testing.T) {
	clk := ptime.NewManual(time.Unix(1_700_000_000, 0))
	var out bytes.Buffer
	eng, err := smartpaste.New(smartpaste.DefaultConfig(), nil, smartpaste.WithClock(clk))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer eng.Close()

	b := &board{}
	w := clipboard.New(clipboard.Options{Read: b.read})
	stop := wire(context.Background(), eng, w, &out, false)
	defer stop()

	w.Poll()
	b.text = "550e8400-e29b-41d4-a716-446655440000"
	w.Poll()
	if !eng.Session().IsActive() {
		t.Fatalf("expected active suggestion")
	}
	clk.Advance(5001 * time.Millisecond)
	if eng.Session().IsActive() {
		t.Fatalf("suggestion should expire")
	}
	if !strings.Contains(out.String(), "x  suggestion dismissed") {
		t.Fatalf("out = %q", out.String())
	}
}
