// Package http serves liveness, readiness and build information
package http

import (
	"context"
	"net/http"
	"time"

	"merchantfeed/internal/core/version"
	"merchantfeed/internal/modkit/httpkit"
	fdom "merchantfeed/internal/services/feedimport/domain"
)

// readyTimeout bounds all dependency pings of one readiness probe
const readyTimeout = 2 * time.Second

type pinger interface {
	Ping(context.Context) error
}

// Check is one backend the readiness probe pings
// Seam is nil when the backend is disabled
type Check struct {
	Name     string
	Required bool
	Seam     any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/capabilities", h.capabilities)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"feedimport-api"`
	Started string `json:"started" example:"2026-03-01T08:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// ReadyCheck is the outcome of one dependency ping
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse summarizes readiness; degraded means only optional backends failed
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
}

// CapabilitiesResponse lists what the importer accepts
type CapabilitiesResponse struct {
	Variants     []fdom.Variant     `json:"variants"`
	Formats      []fdom.Format      `json:"formats"`
	Compressions []fdom.Compression `json:"compressions"`
	Build        version.BuildInfo  `json:"build"`
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// @Summary Readiness with dependency pings
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	parent := context.Background()
	if r != nil {
		parent = r.Context()
	}
	ctx, cancel := context.WithTimeout(parent, readyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(h.deps.Checks))}
	for _, c := range h.deps.Checks {
		rc := ping(ctx, c)
		out.Checks = append(out.Checks, rc)
		switch {
		case rc.Status == "fail" && c.Required:
			out.Status = "fail"
		case rc.Status == "ok", rc.Status == "skipped" && !c.Required:
		case out.Status == "ok":
			out.Status = "degraded"
		}
	}
	return out, nil
}

func ping(ctx context.Context, c Check) ReadyCheck {
	if c.Seam == nil {
		return ReadyCheck{Name: c.Name, Status: "skipped"}
	}
	p, ok := c.Seam.(pinger)
	if !ok {
		return ReadyCheck{Name: c.Name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: c.Name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: c.Name, Status: "ok"}
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.For(h.deps.ServiceName), nil
}

// @Summary Import variants, formats and compressions
// @Tags Meta
// @Produce json
// @Success 200 {object} CapabilitiesResponse
// @Router /meta/capabilities [get]
func (h *handlers) capabilities(_ *http.Request) (any, error) {
	return CapabilitiesResponse{
		Variants:     []fdom.Variant{fdom.VariantPrimaryImport, fdom.VariantUnmatchedReprocess},
		Formats:      []fdom.Format{fdom.FormatCSV, fdom.FormatXML},
		Compressions: []fdom.Compression{fdom.CompressionNone, fdom.CompressionGzip, fdom.CompressionZip, fdom.CompressionTarGz},
		Build:        version.For(h.deps.ServiceName),
	}, nil
}
