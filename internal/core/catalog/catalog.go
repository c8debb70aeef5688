// Package catalog holds display metadata for destination tools
// the classifier never consults it, presentation layers use it to render a suggestion
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tools.yaml
var embedded []byte

// Tool is one destination
type Tool struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Path        string `yaml:"path" json:"path"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description,omitempty"`
}

type document struct {
	Version  int    `yaml:"version"`
	BasePath string `yaml:"base_path"`
	Tools    []Tool `yaml:"tools"`
}

// Catalog is an immutable id -> Tool index
type Catalog struct {
	tools []Tool
	byID  map[string]int
}

// Parse reads a catalog document; tool paths are joined onto base_path
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("catalog: unsupported version %d", doc.Version)
	}
	base := "/" + strings.Trim(doc.BasePath, "/")

	c := &Catalog{byID: make(map[string]int, len(doc.Tools))}
	for i, t := range doc.Tools {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("catalog: tool %d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate tool %q", t.ID)
		}
		if t.Title == "" {
			t.Title = t.ID
		}
		p := t.Path
		if p == "" {
			p = t.ID
		}
		if !strings.HasPrefix(p, "/") {
			p = path.Join(base, p)
		}
		t.Path = p
		c.byID[t.ID] = len(c.tools)
		c.tools = append(c.tools, t)
	}
	return c, nil
}

// LoadFile reads a catalog from disk
func LoadFile(name string) (*Catalog, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return Parse(data)
}

var (
	defOnce sync.Once
	def     *Catalog
)

// Default returns the embedded catalog, panicking if it is malformed
func Default() *Catalog {
	defOnce.Do(func() {
		c, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		def = c
	})
	return def
}

// Lookup returns the tool for id
func (c *Catalog) Lookup(id string) (Tool, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

// PathOf returns the tool path for id, falling back to /tools/<id>
func (c *Catalog) PathOf(id string) string {
	if t, ok := c.Lookup(id); ok {
		return t.Path
	}
	return path.Join("/tools", id)
}

// Tools returns every tool in file order
func (c *Catalog) Tools() []Tool {
	return append([]Tool(nil), c.tools...)
}

// Len returns the number of tools
func (c *Catalog) Len() int { return len(c.tools) }
