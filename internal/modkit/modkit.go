// Package modkit builds api modules from shared deps and options
package modkit

import (
	"net/http"

	"smartpaste/internal/modkit/module"
	"smartpaste/internal/platform/config"
	"smartpaste/internal/platform/logger"
	phttp "smartpaste/internal/platform/net/http"
	ptime "smartpaste/internal/platform/time"
)

// Module is the contract every api module satisfies
type Module = module.Module

// Deps are handed to every module constructor
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	Clock ptime.Clock // nil means the system clock
}

// Option adjusts how a module is built
type Option func(*Built)

func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts the module under prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends module scoped middleware
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands a module the ports it consumes from its siblings
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// WithRegister adds routes after the module's own
func WithRegister(fn func(phttp.Router)) Option { return func(b *Built) { b.Register = fn } }

// Built is the resolved option set
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies opts in order, later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Mount registers own and then any extra routes under Prefix with Mw applied
func (b Built) Mount(r phttp.Router, own func(phttp.Router)) {
	r.Route(b.Prefix, func(rr phttp.Router) {
		rr.Use(b.Mw...)
		own(rr)
		if b.Register != nil {
			b.Register(rr)
		}
	})
}
