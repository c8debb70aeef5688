// Package navigate provides Navigator implementations for the suggestion session
package navigate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"smartpaste/internal/core/catalog"
)

// Destination is a resolved navigation target
type Destination struct {
	TargetID string `json:"target_id"`
	Path     string `json:"path"`
	Title    string `json:"title"`
}

// Resolve maps a target id to a Destination using c (nil uses the default catalog)
func Resolve(c *catalog.Catalog, targetID string) Destination {
	if c == nil {
		c = catalog.Default()
	}
	d := Destination{TargetID: targetID, Path: c.PathOf(targetID), Title: targetID}
	if t, ok := c.Lookup(targetID); ok {
		d.Title = t.Title
	}
	return d
}

// Route hands resolved destinations to a presentation layer
// it never performs the transition itself, it only publishes where to go
type Route struct {
	cat     *catalog.Catalog
	publish func(context.Context, Destination) error

	mu   sync.Mutex
	last *Destination
}

// NewRoute creates a Route; publish may be nil when callers only read Last
func NewRoute(c *catalog.Catalog, publish func(context.Context, Destination) error) *Route {
	if c == nil {
		c = catalog.Default()
	}
	return &Route{cat: c, publish: publish}
}

// Navigate resolves targetID and publishes it
func (r *Route) Navigate(ctx context.Context, targetID string) error {
	if targetID == "" {
		return fmt.Errorf("navigate: empty target")
	}
	d := Resolve(r.cat, targetID)

	r.mu.Lock()
	r.last = &d
	r.mu.Unlock()

	if r.publish == nil {
		return nil
	}
	return r.publish(ctx, d)
}

// Last returns the most recent destination, if any
func (r *Route) Last() (Destination, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Destination{}, false
	}
	return *r.last, true
}

// Writer prints the tool URL to w, one per line
type Writer struct {
	W       io.Writer
	BaseURL string // e.g. http://localhost:3000, empty prints the bare path
	Catalog *catalog.Catalog

	mu sync.Mutex
}

// Navigate writes the destination URL
func (w *Writer) Navigate(ctx context.Context, targetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := Resolve(w.Catalog, targetID)
	url := strings.TrimRight(w.BaseURL, "/") + d.Path

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.W, "-> %s  %s\n", d.Title, url)
	return err
}
