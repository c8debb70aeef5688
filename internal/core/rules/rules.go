// Package rules holds the ordered registry of paste detection rules.
// Rule data (target, pattern, confidences, reason) comes from the embedded rules.json,
// the evidence logic that backs each rule lives in evidence.go
package rules

import (
	"fmt"
	"strings"
)

// Match is rule-internal evidence produced by a predicate
// it only selects among the rule's own confidence variants and never leaves the rule
type Match struct {
	Variant string // key into Rule.Variants, "" selects the base confidence
	Detail  string // substituted for {detail} in the reason template
}

// Predicate reports whether text matches and with which evidence
type Predicate func(text string) (Match, bool)

// Spec is the declarative part of a rule
type Spec struct {
	ID         string
	Target     string
	Confidence float64
	Variants   map[string]float64
	Reason     string
	Pattern    string // informational for programmatic rules
	Evidence   string // informational for programmatic rules
}

// Rule is one immutable detection rule
type Rule struct {
	spec Spec
	test Predicate
}

// NewRule validates spec and binds it to a predicate
func NewRule(spec Spec, test Predicate) (*Rule, error) {
	spec.ID = strings.TrimSpace(spec.ID)
	spec.Target = strings.TrimSpace(spec.Target)
	if spec.ID == "" {
		return nil, fmt.Errorf("rules: rule id is required")
	}
	if spec.Target == "" {
		return nil, fmt.Errorf("rules: rule %q has no target", spec.ID)
	}
	if test == nil {
		return nil, fmt.Errorf("rules: rule %q has no predicate", spec.ID)
	}
	if !validConfidence(spec.Confidence) {
		return nil, fmt.Errorf("rules: rule %q confidence %v outside [0,1]", spec.ID, spec.Confidence)
	}
	variants := make(map[string]float64, len(spec.Variants))
	for k, v := range spec.Variants {
		if !validConfidence(v) {
			return nil, fmt.Errorf("rules: rule %q variant %q confidence %v outside [0,1]", spec.ID, k, v)
		}
		variants[k] = v
	}
	spec.Variants = variants
	return &Rule{spec: spec, test: test}, nil
}

// MustRule is NewRule that panics on a malformed definition
func MustRule(spec Spec, test Predicate) *Rule {
	r, err := NewRule(spec, test)
	if err != nil {
		panic(err)
	}
	return r
}

func validConfidence(c float64) bool { return c >= 0 && c <= 1 }

// ID returns the rule id
func (r *Rule) ID() string { return r.spec.ID }

// Target returns the opaque destination id
func (r *Rule) Target() string { return r.spec.Target }

// Confidence returns the base confidence
func (r *Rule) Confidence() float64 { return r.spec.Confidence }

// Spec returns a copy of the declarative rule data
func (r *Rule) Spec() Spec {
	s := r.spec
	s.Variants = make(map[string]float64, len(r.spec.Variants))
	for k, v := range r.spec.Variants {
		s.Variants[k] = v
	}
	return s
}

// Evaluate runs the predicate and resolves confidence and reason
// a panic inside the predicate is treated as a non-match, as is an unknown variant
func (r *Rule) Evaluate(text string) (confidence float64, reason string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			confidence, reason, ok = 0, "", false
		}
	}()

	m, hit := r.test(text)
	if !hit {
		return 0, "", false
	}
	confidence = r.spec.Confidence
	if m.Variant != "" {
		v, found := r.spec.Variants[m.Variant]
		if !found {
			return 0, "", false
		}
		confidence = v
	}
	return confidence, expandReason(r.spec.Reason, m.Detail), true
}

// expandReason fills {detail}; a template without the token is returned as is
func expandReason(tmpl, detail string) string {
	if !strings.Contains(tmpl, "{detail}") {
		return tmpl
	}
	return strings.TrimSpace(strings.ReplaceAll(tmpl, "{detail}", detail))
}

// Registry is an ordered, immutable rule list
// declaration order is the evaluation order
type Registry struct {
	Version int
	Name    string

	rules []*Rule
	byID  map[string]*Rule
}

// New builds a registry in the given order
func New(rules ...*Rule) (*Registry, error) {
	reg := &Registry{
		rules: make([]*Rule, 0, len(rules)),
		byID:  make(map[string]*Rule, len(rules)),
	}
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("rules: nil rule at position %d", i)
		}
		if _, dup := reg.byID[r.ID()]; dup {
			return nil, fmt.Errorf("rules: duplicate rule id %q", r.ID())
		}
		reg.byID[r.ID()] = r
		reg.rules = append(reg.rules, r)
	}
	return reg, nil
}

// MustNew is New that panics on error
func MustNew(rules ...*Rule) *Registry {
	reg, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Len returns the number of rules
func (g *Registry) Len() int { return len(g.rules) }

// Rules returns the rules in evaluation order
func (g *Registry) Rules() []*Rule {
	out := make([]*Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Rule looks a rule up by id
func (g *Registry) Rule(id string) (*Rule, bool) {
	r, ok := g.byID[id]
	return r, ok
}

// Each visits rules in order until fn returns false
func (g *Registry) Each(fn func(*Rule) bool) {
	for _, r := range g.rules {
		if !fn(r) {
			return
		}
	}
}
