package repo

import (
	"context"

	"merchantfeed/internal/modkit/repokit"
	"merchantfeed/internal/services/rowprocess/domain"
)

// RunsTable is the ClickHouse table holding one row per finished import
const RunsTable = "feed_import_runs"

// CHRuns appends finished imports to ClickHouse
type CHRuns struct{ ch repokit.Clickhouse }

// NewCHRuns returns a run sink over the ClickHouse seam
func NewCHRuns(ch repokit.Clickhouse) *CHRuns { return &CHRuns{ch: ch} }

// RecordRun implements domain.RunSink
func (r *CHRuns) RecordRun(ctx context.Context, s domain.StatsSnapshot) error {
	ok := uint8(0)
	if s.SuccessfullyProcessed {
		ok = 1
	}
	row := []any{
		s.FinishedAt,
		s.ID,
		s.MerchantID,
		s.Kind,
		uint64(max(s.Processed, 0)),
		uint64(max(s.Failed, 0)),
		ok,
		s.AbortCode,
		append([]string{}, s.Critical...),
	}
	return r.ch.Insert(ctx, RunsTable, [][]any{row})
}
