// Package module mounts the meta endpoints
package module

import (
	"time"

	modkit "merchantfeed/internal/modkit"
	"merchantfeed/internal/modkit/httpkit"
	str "merchantfeed/internal/platform/strings"

	metahttp "merchantfeed/internal/services/api/meta/http"
)

// Module serves /meta
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// New constructs the meta module over the store seams in deps
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		built: b,
		deps: metahttp.Deps{
			ServiceName: "feedimport-api",
			StartedAt:   time.Now(),
			Checks: []metahttp.Check{
				{Name: "pg", Required: true, Seam: deps.PG},
				{Name: "ch", Seam: deps.CH},
				{Name: "rds", Seam: deps.RDS},
			},
		},
	}
}

// MountRoutes mounts the meta routes
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Ports exposes nothing
func (m *Module) Ports() any { return nil }
