package http_test

import (
	"context"
	"testing"
	"time"

	"smartpaste/internal/platform/config"
	phttp "smartpaste/internal/platform/net/http"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Setenv("SPTEST_API_PORT", "127.0.0.1:0")
	t.Setenv("SPTEST_SHUTDOWN_GRACE", "1s")
	srv := phttp.NewServer(config.New().Prefix("SPTEST_"))
	if srv.Addr() != "127.0.0.1:0" {
		t.Fatalf("addr = %q", srv.Addr())
	}
	srv.Router().Get("/ping", text("pong"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	t.Setenv("SPTEST_API_PORT", "256.0.0.1:bad")
	srv := phttp.NewServer(config.New().Prefix("SPTEST_"))
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected a listen error")
	}
}
