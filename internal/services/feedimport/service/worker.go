package service

import (
	"context"
	"errors"

	"merchantfeed/internal/platform/logger"
	pstrings "merchantfeed/internal/platform/strings"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"
	"merchantfeed/internal/services/feedimport/guardrails"
)

// maxJobError bounds last_error; stderr of a failed download can be large
const maxJobError = 2048

// Run starts the worker loop that leases queued import jobs
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("feedimport-worker")
	sem := make(chan struct{}, s.cfg.Concurrency)

	for {
		if err := s.poll.Wait(ctx); err != nil {
			return ctx.Err()
		}
		free := s.cfg.Concurrency - len(sem)
		if free <= 0 {
			continue
		}
		jobs, err := s.repo.Lease(ctx, s.cfg.WorkerID, min(free, s.cfg.QueueTakeBatch), s.cfg.LeaseTTL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("lease import jobs failed")
			continue
		}
		for i := range jobs {
			sem <- struct{}{}
			j := jobs[i]
			go func() {
				defer func() { <-sem }()
				if err := s.handleJob(ctx, j); err != nil {
					log.Warn().Err(err).Str("job_id", j.ID).Msg("job bookkeeping failed")
				}
			}()
		}
	}
}

// RunOnce imports one merchant right away without going through the queue
func (s *Svc) RunOnce(ctx context.Context, merchantID string, v dom.Variant) error {
	if !v.Valid() {
		return perr.InvalidArgf("unknown variant %q", v)
	}
	return s.lease(ctx, merchantID, s.cfg.WorkerID, func(ctx context.Context) error {
		_, err := s.importMerchant(ctx, merchantID, v, nil)
		return err
	})
}

// handleJob runs one leased job and records how it ended
// the returned error is about the bookkeeping, import failures land on the job row
func (s *Svc) handleJob(ctx context.Context, j dom.ImportJob) error {
	if s.cfg.MaxAttempts > 0 && j.Attempts > s.cfg.MaxAttempts {
		return s.fail(ctx, j, perr.Newf(perr.ErrorCodeExecution,
			"import abandoned after %d attempts", j.Attempts))
	}

	err := s.lease(ctx, j.MerchantID, s.cfg.WorkerID, func(ctx context.Context) error {
		_, err := s.importMerchant(ctx, j.MerchantID, j.Variant, func(ctx context.Context, statsID int64) error {
			return s.repo.Start(ctx, j.ID, statsID)
		})
		return err
	})
	switch {
	case err == nil:
		dbCtx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.cfg.Timeouts)
		defer cancel()
		return s.repo.Complete(dbCtx, j.ID)
	case errors.Is(err, guardrails.ErrLeaseHeld):
		return s.fail(ctx, j, perr.Wrap(err, perr.ErrorCodeUnavailable, "merchant import already running"))
	default:
		return s.fail(ctx, j, err)
	}
}

// importMerchant loads the feed, opens statistics and runs the planner under the import budget
func (s *Svc) importMerchant(
	ctx context.Context,
	merchantID string,
	v dom.Variant,
	started func(context.Context, int64) error,
) (*dom.FeedImportRequest, error) {
	dbCtx, cancel := guardrails.ForDB(ctx, s.cfg.Timeouts)
	defer cancel()

	feed, err := s.repo.FeedConfig(dbCtx, merchantID)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.CreateStats(dbCtx, merchantID, v)
	if err != nil {
		return nil, err
	}
	if started != nil {
		if err := started(dbCtx, stats.ID); err != nil {
			return nil, err
		}
	}

	req := &dom.FeedImportRequest{
		MerchantID: merchantID,
		Feed:       feed,
		Stats:      &stats,
		Variant:    v,
	}
	if feed != nil {
		req.URL = feed.URL
	}

	ictx, icancel := guardrails.ForImport(ctx, s.cfg.Timeouts)
	defer icancel()
	return req, s.importer.Import(ictx, req)
}

func (s *Svc) fail(ctx context.Context, j dom.ImportJob, cause error) error {
	dbCtx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.cfg.Timeouts)
	defer cancel()
	return s.repo.Fail(dbCtx, j.ID, pstrings.Clip(cause.Error(), maxJobError), dom.ErrorKind(cause), perr.Retryable(cause))
}
