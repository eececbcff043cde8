// Package api provides the HTTP API for the application
package api

import (
	"merchantfeed/internal/platform/config"
	"merchantfeed/internal/platform/logger"
	phttp "merchantfeed/internal/platform/net/http"
	"merchantfeed/internal/platform/store"

	"merchantfeed/internal/modkit"
	"merchantfeed/internal/modkit/httpkit"
	"merchantfeed/internal/modkit/module"
	"merchantfeed/internal/modkit/swaggerkit"

	importsmod "merchantfeed/internal/services/api/imports/module"
	metamod "merchantfeed/internal/services/api/meta/module"

	// Worker side feed import module (owns the Enqueuer and probe ports)
	feedimport "merchantfeed/internal/services/feedimport/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	// Token guards the imports routes; empty leaves them open
	Token       string
	CORSOrigins []string
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.FromStore(opt.Store, opt.Config)
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// the feed import module owns the enqueue and probe ports; publish them first
	feed := feedimport.New(deps, feedimport.Options{})
	module.Register(feed.Name(), feed.Ports())
	fp, ok := module.PortsAs[feedimport.Ports](feed.Name())
	if !ok {
		panic("api: feedimport ports not registered")
	}

	// Inject that port into the imports API module
	imports := importsmod.New(
		deps,
		modkit.WithPorts(importsmod.Ports{Feed: fp.Service}),
		modkit.WithMiddlewares(httpkit.Auth(httpkit.StaticToken(opt.Token))),
	)

	mods := []module.Module{
		metamod.New(deps),
		feed,    // include worker side module so its ports are registered
		imports, // API module that depends on the feed import ports
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackOptions{CORSOrigins: opt.CORSOrigins}), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.Config.Prefix("CORE_API_"), opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
