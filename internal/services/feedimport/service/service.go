// Package service implements feed import planning, the import worker and the enqueue service
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"merchantfeed/internal/modkit"
	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"
	"merchantfeed/internal/services/feedimport/guardrails"
	"merchantfeed/internal/services/feedimport/repo"
)

// Service implements the worker, enqueue and probe ports
type Service interface {
	dom.WorkerPort
	dom.EnqueuePort
	dom.ProbePort
}

// Config controls the worker
type Config struct {
	WorkerID       string
	Concurrency    int
	QueueTakeBatch int
	PollInterval   time.Duration
	LeaseTTL       time.Duration
	MaxAttempts    int
	Timeouts       guardrails.Timeouts
}

// Svc implements Service
type Svc struct {
	repo     dom.StorageRepo
	importer dom.ImporterPort
	probe    dom.TransportProbe
	lease    guardrails.MerchantLease
	poll     *rate.Limiter
	cfg      Config
}

var _ Service = (*Svc)(nil)

// New constructs the service over the Postgres repo
func New(deps modkit.Deps, cfg Config, importer dom.ImporterPort, probe dom.TransportProbe) *Svc {
	return newSvc(repo.NewPG().Bind(deps.PG), importer, probe,
		guardrails.MakeMerchantLease(deps.PG, cfg.LeaseTTL), cfg)
}

func newSvc(
	r dom.StorageRepo,
	importer dom.ImporterPort,
	probe dom.TransportProbe,
	lease guardrails.MerchantLease,
	cfg Config,
) *Svc {
	if cfg.WorkerID == "" {
		cfg.WorkerID = "feedimport-" + uuid.NewString()[:8]
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueTakeBatch <= 0 {
		cfg.QueueTakeBatch = cfg.Concurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 2 * time.Hour
	}
	return &Svc{
		repo:     r,
		importer: importer,
		probe:    probe,
		lease:    lease,
		poll:     rate.NewLimiter(rate.Every(cfg.PollInterval), 1),
		cfg:      cfg,
	}
}

// EnqueueImport queues an import for the worker
func (s *Svc) EnqueueImport(ctx context.Context, merchantID string, v dom.Variant) (dom.ImportJob, error) {
	if merchantID == "" {
		return dom.ImportJob{}, perr.InvalidArgf("merchant id is required")
	}
	if !v.Valid() {
		return dom.ImportJob{}, perr.InvalidArgf("unknown variant %q", v)
	}
	dbCtx, cancel := guardrails.ForDB(ctx, s.cfg.Timeouts)
	defer cancel()
	return s.repo.Enqueue(dbCtx, merchantID, v)
}

// Job returns one queued or finished import job
func (s *Svc) Job(ctx context.Context, jobID string) (dom.ImportJob, error) {
	return s.repo.Get(ctx, jobID)
}

// ProbeMerchant resolves the compression of a merchant feed the way a plan would
func (s *Svc) ProbeMerchant(ctx context.Context, merchantID string) (dom.ProbeResult, error) {
	feed, err := s.repo.FeedConfig(ctx, merchantID)
	if err != nil {
		return dom.ProbeResult{}, err
	}
	if feed == nil {
		return dom.ProbeResult{}, perr.NotFoundf("merchant %s has no feed configuration", merchantID)
	}

	out := dom.ProbeResult{MerchantID: merchantID, URL: feed.URL, Declared: dom.CompressionNone}
	if feed.Compressed {
		out.Declared = feed.Compression
	}
	out.Resolved = ResolveCompression(feed, feed.URL)
	if s.probe == nil {
		return out, nil
	}

	pctx, cancel := guardrails.ForProbe(ctx, s.cfg.Timeouts)
	defer cancel()
	out.GzipEncoded, err = s.probe.IsGzipEncoded(pctx, feed.URL)
	if err != nil {
		return dom.ProbeResult{}, err
	}
	if out.Resolved == dom.CompressionNone && out.GzipEncoded {
		out.Resolved = dom.CompressionGzip
	}
	return out, nil
}
