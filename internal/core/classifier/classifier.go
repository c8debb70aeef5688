// Package classifier maps pasted text to a destination tool
// Rules are evaluated in registry order and the first rule whose confidence clears the
// acceptance threshold wins, even when a later rule would report a higher confidence
package classifier

import (
	"strings"

	"smartpaste/internal/core/rules"
)

// DefaultThreshold is the minimum confidence a result must carry
const DefaultThreshold = 0.70

// Result is an immutable detection outcome
type Result struct {
	TargetID   string  `json:"target_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	RuleID     string  `json:"rule_id"`
}

// Options controls classifier behavior
type Options struct {
	// Threshold is the acceptance threshold in [0,1]; zero means DefaultThreshold
	Threshold float64
}

// Classifier evaluates a registry against input text
// it holds no mutable state and is safe for concurrent use
type Classifier struct {
	reg       *rules.Registry
	threshold float64
}

// New creates a Classifier over reg, nil reg means the embedded default registry
func New(reg *rules.Registry, opts Options) *Classifier {
	if reg == nil {
		reg = rules.Default()
	}
	th := opts.Threshold
	if th <= 0 || th > 1 {
		th = DefaultThreshold
	}
	return &Classifier{reg: reg, threshold: th}
}

// Threshold returns the acceptance threshold in effect
func (c *Classifier) Threshold() float64 { return c.threshold }

// Registry returns the registry being evaluated
func (c *Classifier) Registry() *rules.Registry { return c.reg }

// Classify returns the first qualifying result or nil
// empty and whitespace-only input returns nil without evaluating any rule
func (c *Classifier) Classify(text string) *Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out *Result
	c.reg.Each(func(r *rules.Rule) bool {
		conf, reason, ok := r.Evaluate(text)
		if !ok || conf < c.threshold {
			return true
		}
		out = &Result{
			TargetID:   r.Target(),
			Confidence: conf,
			Reason:     reason,
			RuleID:     r.ID(),
		}
		return false
	})
	return out
}

// Candidates returns every qualifying result in registry order
// diagnostics only, Classify always returns the first element of this list
func (c *Classifier) Candidates(text string) []Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []Result
	c.reg.Each(func(r *rules.Rule) bool {
		if conf, reason, ok := r.Evaluate(text); ok && conf >= c.threshold {
			out = append(out, Result{TargetID: r.Target(), Confidence: conf, Reason: reason, RuleID: r.ID()})
		}
		return true
	})
	return out
}

var std = New(nil, Options{})

// Classify runs the default classifier (embedded rules, default threshold)
func Classify(text string) *Result { return std.Classify(text) }
