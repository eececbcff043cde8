// Package module wires the imports API using modkit
package module

import (
	modkit "merchantfeed/internal/modkit"
	"merchantfeed/internal/modkit/httpkit"
	str "merchantfeed/internal/platform/strings"
	idom "merchantfeed/internal/services/api/imports/domain"
	ihttp "merchantfeed/internal/services/api/imports/http"
	irepo "merchantfeed/internal/services/api/imports/repo"
	isvc "merchantfeed/internal/services/api/imports/service"
)

// Ports declares the feed import port injected into this API module
type Ports struct {
	Feed idom.FeedPort
}

// Module serves /feeds
type Module struct {
	built modkit.Built
	svc   isvc.Service
}

// New constructs the imports module; it panics without a Feed port
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("imports"),
		modkit.WithPrefix("/feeds"),
	}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Feed == nil {
		panic("imports API module requires the Feed port (from services/feedimport)")
	}
	return &Module{
		built: b,
		svc:   isvc.New(deps.PG, irepo.NewPG(), injected.Feed),
	}
}

// MountRoutes mounts the feed routes
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { ihttp.Register(rr, m.svc) })
}

// Ports returns the read service
func (m *Module) Ports() any { return m.svc }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }
