// Package http provides http transport for feed imports
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"merchantfeed/internal/modkit/httpkit"
	perr "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/services/api/imports/domain"
	svc "merchantfeed/internal/services/api/imports/service"
)

// Register mounts import endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.EnqueueInput](r, "/imports", h.enqueue)
	httpkit.Get(r, "/imports/{id}", h.job)
	httpkit.Get(r, "/imports/{id}/stats", h.stats)
	httpkit.Get(r, "/imports/{id}/errors", h.errors)

	// compression probe, no import is started
	httpkit.Get(r, "/merchants/{merchantID}/probe", h.probe)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /feeds/imports Imports enqueueImport
// @Summary Queue a feed import
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body domain.EnqueueInput true "Import"
// @Success 202 {object} domain.JobView "queued"
// @Failure 400 {object} httpkit.Envelope "validation"
// @Router /feeds/imports [post]
func (h *handlers) enqueue(r *stdhttp.Request, in domain.EnqueueInput) (any, error) {
	job, err := h.svc.Enqueue(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Accepted(job), nil
}

// swagger:route GET /feeds/imports/{id} Imports getImport
// @Summary Import job state
// @Tags Imports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} domain.JobView "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /feeds/imports/{id} [get]
func (h *handlers) job(r *stdhttp.Request) (any, error) {
	return h.svc.Job(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /feeds/imports/{id}/stats Imports importStats
// @Summary Import statistics
// @Tags Imports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} domain.StatsView "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /feeds/imports/{id}/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.svc.Stats(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /feeds/imports/{id}/errors Imports importErrors
// @Summary Row error log of an import
// @Tags Imports
// @Produce json
// @Param id path string true "Job id"
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size" minimum(1) maximum(500)
// @Success 200 {array} domain.ErrorRow "ok"
// @Router /feeds/imports/{id}/errors [get]
func (h *handlers) errors(r *stdhttp.Request) (any, error) {
	q := domain.ErrorsQuery{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, perr.InvalidArgf("limit must be a positive integer")
		}
		q.Limit = n
	}
	page, err := h.svc.Errors(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		return nil, err
	}
	return httpkit.List(page.Items, page.Total, page.Limit, page.NextCursor), nil
}

// swagger:route GET /feeds/merchants/{merchantID}/probe Imports probeFeed
// @Summary Resolve feed compression
// @Tags Imports
// @Produce json
// @Param merchantID path string true "Merchant id"
// @Success 200 {object} fdom.ProbeResult "ok"
// @Failure 404 {object} httpkit.Envelope "no feed configured"
// @Router /feeds/merchants/{merchantID}/probe [get]
func (h *handlers) probe(r *stdhttp.Request) (any, error) {
	return h.svc.Probe(r.Context(), chi.URLParam(r, "merchantID"))
}
