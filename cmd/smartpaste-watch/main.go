// Command smartpaste-watch watches the OS clipboard and suggests a tool for each new copy
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"smartpaste/internal/adapters/clipboard"
	"smartpaste/internal/adapters/navigate"
	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/smartpaste"
	"smartpaste/internal/core/suggest"
	"smartpaste/internal/core/version"
	"smartpaste/internal/platform/config"
	"smartpaste/internal/platform/logger"
)

func main() {
	var (
		interval = flag.Duration("interval", clipboard.DefaultInterval, "clipboard poll interval")
		accept   = flag.Bool("accept", false, "accept every suggestion as soon as it is offered")
		initial  = flag.Bool("initial", false, "treat the clipboard content at startup as a paste")
		surface  = flag.String("surface", "", "surface reported with each paste (the hub surface enables auto-navigate)")
		showVer  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.For("smartpaste-watch"))
		return
	}

	l := logger.Get()
	cfg := smartpaste.ConfigFromEnv()
	baseURL := config.New().Prefix("SMARTPASTE_").MayString("BASE_URL", "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nav := &navigate.Writer{W: os.Stdout, BaseURL: baseURL, Catalog: catalog.Default()}
	eng, err := smartpaste.New(cfg, nav)
	if err != nil {
		l.Fatal().Err(err).Msg("engine config rejected")
	}
	defer eng.Close()

	w := clipboard.New(clipboard.Options{Interval: *interval, Surface: *surface, EmitInitial: *initial})
	stopWatch := wire(ctx, eng, w, os.Stdout, *accept)
	defer stopWatch()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal().Err(err).Msg("clipboard watch failed")
	}
	l.Info().Msg("clipboard watch stopped")
}

// wire connects the watcher to the engine and prints session transitions to out
func wire(ctx context.Context, eng *smartpaste.Engine, src *clipboard.Watcher, out io.Writer, autoAccept bool) (cancel func()) {
	p := &printer{out: out}
	unsub := eng.Session().Subscribe(p.snapshot)
	detach := eng.Attach(ctx, src, func(o smartpaste.Outcome) {
		if !autoAccept || o.Result == nil || o.Navigated {
			return
		}
		if _, err := eng.Session().Accept(ctx); err != nil && !errors.Is(err, suggest.ErrIdle) {
			logger.C(ctx).Warn().Err(err).Msg("accept failed")
		}
	})
	return func() {
		detach()
		unsub()
	}
}

type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) snapshot(s suggest.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch s.Cause {
	case suggest.CauseOffered, suggest.CauseReplaced:
		if s.Result == nil {
			return
		}
		t, _ := catalog.Default().Lookup(s.Result.TargetID)
		title := t.Title
		if title == "" {
			title = s.Result.TargetID
		}
		left := ""
		if s.ExpiresAt != nil {
			left = fmt.Sprintf(" (%s)", time.Until(*s.ExpiresAt).Round(time.Second))
		}
		fmt.Fprintf(p.out, "?  %s %.0f%%: %s%s\n", title, s.Result.Confidence*100, s.Result.Reason, left)
	case suggest.CauseExpired, suggest.CauseDismissed:
		fmt.Fprintln(p.out, "x  suggestion dismissed")
	}
}
