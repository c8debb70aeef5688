// Package api provides the HTTP API for the application
package api

import (
	"smartpaste/internal/platform/config"
	"smartpaste/internal/platform/logger"
	phttp "smartpaste/internal/platform/net/http"

	"smartpaste/internal/modkit"
	"smartpaste/internal/modkit/httpkit"
	"smartpaste/internal/modkit/module"
	"smartpaste/internal/modkit/swaggerkit"

	metamod "smartpaste/internal/services/api/meta/module"
	spmod "smartpaste/internal/services/api/smartpaste/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	SmartPaste     spmod.Options
	EnableSwagger  bool
	EnableProfiler bool
}

// Mounted is what Mount hands back to main for shutdown
type Mounted struct {
	SmartPaste *spmod.Module
}

// Close disposes module resources such as live sessions
func (m Mounted) Close() {
	if m.SmartPaste != nil {
		m.SmartPaste.Close()
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) (Mounted, error) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// construct smart paste first so meta can report on its classifier and sessions
	sp, err := spmod.New(deps, opt.SmartPaste)
	if err != nil {
		return Mounted{}, err
	}
	spPorts := module.MustPortsOf[spmod.Ports](sp)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{
			Classifier: spPorts.Classifier,
			Catalog:    spPorts.Catalog,
			Sessions:   sp.Sessions,
		})),
		sp,
	}

	if err := swaggerkit.Mount(r, opt.EnableSwagger); err != nil {
		sp.Close()
		return Mounted{}, err
	}
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return Mounted{SmartPaste: sp}, nil
}
