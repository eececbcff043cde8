package service

import (
	"context"
	"time"

	"merchantfeed/internal/platform/logger"

	fdom "merchantfeed/internal/services/feedimport/domain"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

// Reporter persists the end state of an import and mirrors it to the run sink
type Reporter struct {
	stats dom.StatsWriter
	runs  dom.RunSink
	now   func() time.Time

	abortCode string
}

// NewReporter constructs a reporter; runs may be nil
func NewReporter(stats dom.StatsWriter, runs dom.RunSink) *Reporter {
	return &Reporter{stats: stats, runs: runs, now: time.Now}
}

// DetectedProcessingError implements dom.AbortHandler
func (r *Reporter) DetectedProcessingError(ctx context.Context, stats *dom.ImportStatistics, err error) {
	r.abortCode = fdom.ErrorKind(err)
	logger.C(ctx).Warn().
		Str("merchant_id", stats.MerchantID).
		Int64("import_stats_id", stats.ID).
		Str("kind", r.abortCode).
		Msg("import aborted by processing error")
}

// ReportCriticalErrors implements dom.StatsReporter
// the run sink is best effort; only the statistics write can fail the report
// an import without a statistics row only reaches the run sink
func (r *Reporter) ReportCriticalErrors(ctx context.Context, stats *dom.ImportStatistics) error {
	snap := stats.Snapshot(r.now())
	snap.AbortCode = r.abortCode

	if snap.ID > 0 {
		if err := r.stats.FinishStats(ctx, snap); err != nil {
			return err
		}
	}
	if r.runs != nil {
		if err := r.runs.RecordRun(ctx, snap); err != nil {
			logger.C(ctx).Warn().Err(err).Int64("import_stats_id", snap.ID).Msg("record import run failed")
		}
	}
	return nil
}
