// Package service contains the imports API workflows
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"merchantfeed/internal/modkit/repokit"
	perr "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/services/api/imports/domain"
	"merchantfeed/internal/services/api/imports/repo"
	fdom "merchantfeed/internal/services/feedimport/domain"
)

// Error log page sizes
const (
	DefaultErrorsLimit = 100
	MaxErrorsLimit     = 500
)

// Service defines the imports service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the imports service
type Svc struct {
	Repo repo.Repo
	feed domain.FeedPort
}

// New constructs an imports service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], feed domain.FeedPort) *Svc {
	if db == nil {
		panic("imports.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("imports.Service requires a non nil Repo binder")
	}
	if feed == nil {
		panic("imports.Service requires a non nil FeedPort")
	}
	return &Svc{Repo: binder.Bind(db), feed: feed}
}

// Enqueue queues an import for the worker
func (s *Svc) Enqueue(ctx context.Context, in domain.EnqueueInput) (domain.JobView, error) {
	v, ok := fdom.ParseVariant(in.Variant)
	if !ok {
		return domain.JobView{}, perr.InvalidArgf("unknown variant %q", in.Variant)
	}
	j, err := s.feed.EnqueueImport(ctx, in.MerchantID, v)
	if err != nil {
		return domain.JobView{}, err
	}
	return jobView(j), nil
}

// Job returns the state of an import job
func (s *Svc) Job(ctx context.Context, jobID string) (domain.JobView, error) {
	j, err := s.feed.Job(ctx, jobID)
	if err != nil {
		return domain.JobView{}, err
	}
	return jobView(j), nil
}

// Stats returns the statistics of the attempt a job started
func (s *Svc) Stats(ctx context.Context, jobID string) (domain.StatsView, error) {
	statsID, err := s.statsOf(ctx, jobID)
	if err != nil {
		return domain.StatsView{}, err
	}
	r, err := s.Repo.Stats(ctx, statsID)
	if err != nil {
		return domain.StatsView{}, err
	}
	critical := r.Critical
	if critical == nil {
		critical = []string{}
	}
	return domain.StatsView{
		ID:                    r.ID,
		MerchantID:            r.MerchantID,
		Kind:                  r.Kind,
		Processed:             r.Processed,
		Failed:                r.Failed,
		SuccessfullyProcessed: r.SuccessfullyProcessed,
		CriticalErrors:        critical,
		AbortCode:             r.AbortCode,
		FinishedAt:            r.FinishedAt,
	}, nil
}

// Errors pages the row error log of the attempt a job started
func (s *Svc) Errors(ctx context.Context, jobID string, q domain.ErrorsQuery) (domain.ErrorPage, error) {
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultErrorsLimit
	case limit > MaxErrorsLimit:
		limit = MaxErrorsLimit
	}
	after, err := decodeCursor(q.Cursor)
	if err != nil {
		return domain.ErrorPage{}, err
	}

	statsID, err := s.statsOf(ctx, jobID)
	if err != nil {
		return domain.ErrorPage{}, err
	}
	rows, err := s.Repo.Errors(ctx, statsID, after, limit)
	if err != nil {
		return domain.ErrorPage{}, err
	}
	total, err := s.Repo.CountErrors(ctx, statsID)
	if err != nil {
		return domain.ErrorPage{}, err
	}

	page := domain.ErrorPage{Items: make([]domain.ErrorRow, 0, len(rows)), Total: total, Limit: limit}
	for _, r := range rows {
		page.Items = append(page.Items, domain.ErrorRow{
			ID:        r.ID,
			OfferID:   r.OfferID,
			Line:      r.Line,
			Message:   r.Message,
			Context:   json.RawMessage(r.Context),
			CreatedAt: r.CreatedAt,
		})
	}
	if len(rows) == limit {
		page.NextCursor = encodeCursor(rows[len(rows)-1].ID)
	}
	return page, nil
}

// Probe resolves the compression of a merchant feed without importing it
func (s *Svc) Probe(ctx context.Context, merchantID string) (fdom.ProbeResult, error) {
	if merchantID == "" {
		return fdom.ProbeResult{}, perr.InvalidArgf("merchant id is required")
	}
	return s.feed.ProbeMerchant(ctx, merchantID)
}

func (s *Svc) statsOf(ctx context.Context, jobID string) (int64, error) {
	j, err := s.feed.Job(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if j.StatsID == nil {
		return 0, perr.NotFoundf("import %s has not started", jobID)
	}
	return *j.StatsID, nil
}

func jobView(j fdom.ImportJob) domain.JobView {
	return domain.JobView{
		ID:         j.ID,
		MerchantID: j.MerchantID,
		Variant:    string(j.Variant),
		Status:     j.Status,
		Attempts:   j.Attempts,
		StatsID:    j.StatsID,
		LastError:  j.LastError,
		ErrorKind:  j.ErrorKind,
		Retryable:  j.Retryable,
		EnqueuedAt: j.EnqueuedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}

type cursor struct {
	After int64 `json:"after"`
}

func encodeCursor(after int64) string {
	b, _ := json.Marshal(cursor{After: after})
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, perr.InvalidArgf("malformed cursor")
	}
	var c cursor
	if err := json.Unmarshal(b, &c); err != nil || c.After < 0 {
		return 0, perr.InvalidArgf("malformed cursor")
	}
	return c.After, nil
}
