// Package module wires the smart paste API into HTTP via modkit
package module

import (
	"time"

	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/rules"
	"smartpaste/internal/core/smartpaste"
	"smartpaste/internal/modkit"
	"smartpaste/internal/modkit/httpkit"
	"smartpaste/internal/platform/strings"
	"smartpaste/internal/services/api/smartpaste/domain"

	sphttp "smartpaste/internal/services/api/smartpaste/http"
	"smartpaste/internal/services/api/smartpaste/service"
)

// Ports exposes the service port and shared classifier for cross-module lookups
type Ports struct {
	Service    domain.ServicePort
	Classifier *classifier.Classifier
	Catalog    *catalog.Catalog
}

// Options configures the smart paste module
type Options struct {
	Engine     smartpaste.Config
	SessionTTL time.Duration
	Catalog    *catalog.Catalog // nil uses the embedded catalog
}

// FromConfig reads engine options from SMARTPASTE_* and the session TTL from CORE_API_SESSION_TTL
func FromConfig(deps modkit.Deps) Options {
	return Options{
		Engine:     smartpaste.ConfigFromEnv(),
		SessionTTL: deps.Cfg.Prefix("CORE_API_").MayDuration("SESSION_TTL", service.DefaultSessionTTL),
	}
}

// Module implements the smart paste module
type Module struct {
	deps  modkit.Deps
	b     modkit.Built
	ports Ports
	svc   *service.Svc
}

// New constructs the smart paste module, an invalid engine config or rules file is a startup defect
func New(deps modkit.Deps, opt Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("smartpaste"), modkit.WithPrefix("/smartpaste")}, opts...)...)

	if err := opt.Engine.Validate(); err != nil {
		return nil, err
	}
	reg := rules.Default()
	if opt.Engine.RulesFile != "" {
		r, err := rules.LoadFile(opt.Engine.RulesFile)
		if err != nil {
			return nil, err
		}
		reg = r
	}
	cat := opt.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	cls := classifier.New(reg, classifier.Options{Threshold: opt.Engine.AcceptanceThreshold})
	hub := service.NewHub(opt.Engine, cls, cat, opt.SessionTTL, deps.Clock)
	svc := service.New(cls, cat, hub)

	return &Module{
		deps:  deps,
		b:     b,
		ports: Ports{Service: svc, Classifier: cls, Catalog: cat},
		svc:   svc,
	}, nil
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) { sphttp.Register(r, m.svc) })
}

// Sessions returns the number of live sessions
func (m *Module) Sessions() int { return m.svc.Hub().Len() }

// Close disposes every live session
func (m *Module) Close() { m.svc.Hub().Flush() }

func (m *Module) Name() string   { return strings.MustString(m.b.Name, "module name") }
func (m *Module) Prefix() string { return strings.MustPrefix(m.b.Prefix) }
func (m *Module) Ports() any     { return m.ports }
