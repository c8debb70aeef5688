package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

//go:embed rules.json
var embedded []byte

// PackVersion is the only rules.json version this package understands
const PackVersion = 1

type rawRule struct {
	ID         string             `json:"id"`
	Target     string             `json:"target"`
	Pattern    string             `json:"pattern"`
	Evidence   string             `json:"evidence"`
	Confidence float64            `json:"confidence"`
	Variants   map[string]float64 `json:"variants,omitempty"`
	Reason     string             `json:"reason"`
}

type rawPack struct {
	Version int            `json:"version"`
	Meta    map[string]any `json:"meta"`
	Rules   []rawRule      `json:"rules"`
}

// Load returns the registry compiled from the embedded rules.json
func Load() (*Registry, error) { return Parse(embedded) }

// LoadFile compiles a rules file from disk, same format as the embedded pack
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Clean(strings.TrimSpace(path)))
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse compiles a rules pack
// any malformed rule fails the whole pack, there is no partial registry
func Parse(data []byte) (*Registry, error) {
	var rp rawPack
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("rules: parse rules.json: %w", err)
	}
	if rp.Version != PackVersion {
		return nil, fmt.Errorf("rules: unsupported rules.json version %d (want %d)", rp.Version, PackVersion)
	}
	if len(rp.Rules) == 0 {
		return nil, fmt.Errorf("rules: pack has no rules")
	}

	compiled := make([]*Rule, 0, len(rp.Rules))
	for _, raw := range rp.Rules {
		r, err := compileRule(raw)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, r)
	}

	reg, err := New(compiled...)
	if err != nil {
		return nil, err
	}
	reg.Version = rp.Version
	if name, ok := rp.Meta["name"].(string); ok {
		reg.Name = name
	}
	return reg, nil
}

func compileRule(raw rawRule) (*Rule, error) {
	re, err := regexp.Compile(raw.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rules: compile %q for rule %q: %w", raw.Pattern, raw.ID, err)
	}
	kind := strings.TrimSpace(raw.Evidence)
	if kind == "" {
		kind = EvidenceNone
	}
	ev, ok := evidenceKinds[kind]
	if !ok {
		return nil, fmt.Errorf("rules: rule %q uses unknown evidence %q", raw.ID, raw.Evidence)
	}

	test := func(text string) (Match, bool) {
		if !re.MatchString(text) {
			return Match{}, false
		}
		return ev(text)
	}
	return NewRule(Spec{
		ID:         raw.ID,
		Target:     raw.Target,
		Confidence: raw.Confidence,
		Variants:   raw.Variants,
		Reason:     raw.Reason,
		Pattern:    raw.Pattern,
		Evidence:   kind,
	}, test)
}

// MustLoad compiles the embedded pack and panics on a malformed definition
func MustLoad() *Registry {
	reg, err := Load()
	if err != nil {
		panic(err)
	}
	return reg
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry built from the embedded pack
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = MustLoad() })
	return defaultReg
}
