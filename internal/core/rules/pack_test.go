package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_EmbeddedOrder(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if reg.Version != PackVersion {
		t.Fatalf("version = %d, want %d", reg.Version, PackVersion)
	}
	want := []string{
		"jwt", "json", "uuid", "hash", "color", "timestamp",
		"html", "xml", "url", "url-encoded", "cron", "base64",
	}
	got := reg.Rules()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.ID() != want[i] {
			t.Fatalf("rule %d = %q, want %q", i, r.ID(), want[i])
		}
		if r.Target() == "" {
			t.Fatalf("rule %q has empty target", r.ID())
		}
	}
	if _, ok := reg.Rule("uuid"); !ok {
		t.Fatalf("Rule(uuid) missing")
	}
}

func TestDefault_IsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatalf("Default should return the same registry")
	}
}

func TestParse_Defects(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"bad json", `{`, "parse rules.json"},
		{"version", `{"version":9,"rules":[]}`, "unsupported"},
		{"empty", `{"version":1,"rules":[]}`, "no rules"},
		{"regex", `{"version":1,"rules":[{"id":"a","target":"t","pattern":"(","confidence":0.9}]}`, "compile"},
		{"evidence", `{"version":1,"rules":[{"id":"a","target":"t","pattern":"x","evidence":"magic","confidence":0.9}]}`, "unknown evidence"},
		{"confidence", `{"version":1,"rules":[{"id":"a","target":"t","pattern":"x","confidence":1.5}]}`, "outside [0,1]"},
		{"variant", `{"version":1,"rules":[{"id":"a","target":"t","pattern":"x","confidence":0.9,"variants":{"v":-1}}]}`, "outside [0,1]"},
		{"target", `{"version":1,"rules":[{"id":"a","pattern":"x","confidence":0.9}]}`, "no target"},
		{"duplicate", `{"version":1,"rules":[{"id":"a","target":"t","pattern":"x","confidence":0.9},{"id":"a","target":"t","pattern":"y","confidence":0.9}]}`, "duplicate"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	doc := `{"version":1,"meta":{"name":"custom"},"rules":[
		{"id":"ticket","target":"issue-tracker","pattern":"^[A-Z]+-[0-9]+$","confidence":0.8,"reason":"Looks like a ticket key"}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if reg.Name != "custom" || reg.Len() != 1 {
		t.Fatalf("unexpected registry: name=%q len=%d", reg.Name, reg.Len())
	}
	r, _ := reg.Rule("ticket")
	conf, reason, ok := r.Evaluate("PROJ-42")
	if !ok || conf != 0.8 || reason != "Looks like a ticket key" {
		t.Fatalf("Evaluate = %v %q %v", conf, reason, ok)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
