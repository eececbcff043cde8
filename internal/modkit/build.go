package modkit

import (
	"net/http"

	"merchantfeed/internal/modkit/httpkit"
	str "merchantfeed/internal/platform/strings"
)

// Built is the resolved option set a module is constructed from
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Mount attaches routes under the module prefix behind its middlewares
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	r.Route(str.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		routes(rr)
	})
}
