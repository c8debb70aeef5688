// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/version"
	modkit "smartpaste/internal/modkit"
	"smartpaste/internal/modkit/httpkit"
	str "smartpaste/internal/platform/strings"
	metahttp "smartpaste/internal/services/api/meta/http"
)

// Ports are the optional collaborators the meta endpoints report on
type Ports struct {
	Classifier *classifier.Classifier
	Catalog    *catalog.Catalog
	Sessions   func() int
}

// Module serves health, readiness and build info
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs a meta module
// pass modkit.WithPorts(Ports{...}) to report on the live classifier and sessions
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	ports, _ := b.Ports.(Ports)
	started := time.Now()
	if deps.Clock != nil {
		started = deps.Clock.Now()
	}
	return &Module{
		b: b,
		deps: metahttp.Deps{
			ServiceName: version.Info().Service,
			StartedAt:   started,
			Classifier:  ports.Classifier,
			Catalog:     ports.Catalog,
			Sessions:    ports.Sessions,
		},
	}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) { metahttp.Register(r, m.deps) })
}

func (m *Module) Name() string   { return str.MustString(m.b.Name, "meta") }
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports is nil, nothing consumes meta
func (m *Module) Ports() any { return nil }
