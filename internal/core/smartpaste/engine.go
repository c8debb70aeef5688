// Package smartpaste wires the paste gate, classifier and suggestion session for one client
package smartpaste

import (
	"context"
	"fmt"
	"strings"

	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/pastegate"
	"smartpaste/internal/core/rules"
	"smartpaste/internal/core/suggest"
	"smartpaste/internal/platform/logger"
	ptime "smartpaste/internal/platform/time"
)

// Outcome reports what one paste event did
type Outcome struct {
	Verdict   pastegate.Verdict  `json:"verdict"`
	Result    *classifier.Result `json:"result"`
	Navigated bool               `json:"navigated"`
}

// Option customises an Engine
type Option func(*options)

type options struct {
	clock ptime.Clock
	reg   *rules.Registry
	cls   *classifier.Classifier
}

// WithClock sets the clock used by debounce and dismiss timers
func WithClock(c ptime.Clock) Option { return func(o *options) { o.clock = c } }

// WithRegistry overrides the rule registry
func WithRegistry(r *rules.Registry) Option { return func(o *options) { o.reg = r } }

// WithClassifier shares a prebuilt classifier, it wins over WithRegistry
func WithClassifier(c *classifier.Classifier) Option { return func(o *options) { o.cls = c } }

// Engine handles paste events for one client
type Engine struct {
	cfg     Config
	gate    *pastegate.Gate
	cls     *classifier.Classifier
	session *suggest.Session
	log     *logger.Logger
}

// New validates cfg and builds an Engine; nav receives accepted and auto-navigated targets
func New(cfg Config, nav suggest.Navigator, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.clock == nil {
		o.clock = ptime.System()
	}

	cls := o.cls
	if cls == nil {
		reg := o.reg
		if reg == nil && cfg.RulesFile != "" {
			r, err := rules.LoadFile(cfg.RulesFile)
			if err != nil {
				return nil, fmt.Errorf("smartpaste: %w", err)
			}
			reg = r
		}
		cls = classifier.New(reg, classifier.Options{Threshold: cfg.AcceptanceThreshold})
	}

	return &Engine{
		cfg:  cfg,
		gate: pastegate.New(cfg.DebounceWindow, o.clock),
		cls:  cls,
		session: suggest.New(nav, suggest.Options{
			DismissTimeout: cfg.DismissTimeout,
			AutoNavigate:   cfg.AutoNavigate,
			Clock:          o.clock,
		}),
		log: logger.Named("smartpaste.engine"),
	}, nil
}

// Paste runs one event through gate, classifier and session
func (e *Engine) Paste(ctx context.Context, ev pastegate.Event) Outcome {
	acc, verdict := e.gate.Handle(ev)
	if verdict != pastegate.VerdictAccepted {
		return Outcome{Verdict: verdict}
	}
	return e.offer(ctx, acc)
}

func (e *Engine) offer(ctx context.Context, acc pastegate.Accepted) Outcome {
	out := Outcome{Verdict: pastegate.VerdictAccepted, Result: e.cls.Classify(acc.Text)}
	if out.Result == nil {
		return out
	}
	navigated, err := e.session.Offer(ctx, out.Result, e.OnHub(acc.Surface))
	if err != nil {
		// the outcome still carries the detection, navigation failures are not retried
		e.log.Warn().Err(err).Str("target", out.Result.TargetID).Msg("offer failed")
	}
	out.Navigated = navigated
	return out
}

// Attach feeds src into the engine and returns the cancel func
func (e *Engine) Attach(ctx context.Context, src pastegate.Source, onOutcome func(Outcome)) (cancel func()) {
	return e.gate.Attach(src, func(acc pastegate.Accepted) {
		out := e.offer(ctx, acc)
		if onOutcome != nil {
			onOutcome(out)
		}
	})
}

// OnHub reports whether surface is the configured tool hub
func (e *Engine) OnHub(surface string) bool {
	return strings.EqualFold(strings.TrimSpace(surface), e.cfg.HubSurface)
}

// Session exposes the suggestion session for presentation layers
func (e *Engine) Session() *suggest.Session { return e.session }

// Classifier returns the classifier in use
func (e *Engine) Classifier() *classifier.Classifier { return e.cls }

// Config returns the validated options
func (e *Engine) Config() Config { return e.cfg }

// Close disposes the session and its timer
func (e *Engine) Close() { e.session.Close() }
