package logger

import (
	"bytes"
	"context"
	"testing"

	kit "smartpaste/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"INFO":     zerolog.InfoLevel,
		" warn ":   zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.DebugLevel,
		"nonsense": zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_CALLER", "yes")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || !opt.WithCaller {
		t.Fatalf("FromEnv = %+v", opt)
	}
	if opt.Service != "smartpaste" {
		t.Fatalf("default service = %q", opt.Service)
	}
}

func TestInit_ScopedChildren(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Service: "smartpaste-test", Writer: &buf})
	Init(Options{Level: "error"}) // ignored

	Get().Debug().Msg("dropped")
	Named("engine").Info().Msg("engine up")
	ctx := WithRequest(context.Background(), "req-123", "s-abc")
	C(ctx).Info().Msg("paste handled")
	C(context.Background()).Info().Msg("no ids")

	out := buf.String()
	kit.MustContain(t, out, `"component":"engine"`)
	kit.MustContain(t, out, `"request_id":"req-123"`)
	kit.MustContain(t, out, `"session_id":"s-abc"`)
	kit.MustContain(t, out, `"service":"smartpaste-test"`)
	if bytes.Contains(buf.Bytes(), []byte("dropped")) {
		t.Fatalf("debug line written at info level:\n%s", out)
	}
	if Named("") != Get() {
		t.Fatalf("Named(\"\") should be the root")
	}
}
