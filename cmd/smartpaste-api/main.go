// @title         Smart Paste API
// @version       0.1.0
// @description   Clipboard content detection and tool suggestion sessions

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smartpaste/internal/platform/config"
	"smartpaste/internal/platform/logger"
	phttp "smartpaste/internal/platform/net/http"

	"smartpaste/internal/modkit"
	"smartpaste/internal/services/api"
	spmod "smartpaste/internal/services/api/smartpaste/module"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// reads CORE_API_PORT and CORE_SHUTDOWN_GRACE
	srv := phttp.NewServer(root.Prefix("CORE_"))

	mounted, err := api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Logger:         l,
			SmartPaste:     spmod.FromConfig(modkit.Deps{Cfg: root}),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)
	if err != nil {
		l.Fatal().Err(err).Msg("api.Mount failed")
	}
	defer mounted.Close()

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
