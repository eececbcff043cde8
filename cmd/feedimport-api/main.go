// @title         Merchant Feed Import API
// @version       0.1.0
// @description   Queue feed imports, read their statistics and error logs, probe feed compression

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"merchantfeed/internal/platform/config"
	"merchantfeed/internal/platform/logger"
	phttp "merchantfeed/internal/platform/net/http"
	"merchantfeed/internal/platform/store"

	"merchantfeed/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres, optional clickhouse and redis)
	st, err := store.Open(
		context.Background(),
		store.FromConfig(root, "api"),
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_ADDR / CORE_API_SHUTDOWN_TIMEOUT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			Token:          apiCfg.MayString("TOKEN", ""),
			CORSOrigins:    apiCfg.MayCSV("CORS_ORIGINS", nil),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
