package service

import (
	"context"
	"testing"
	"time"

	perr "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/services/api/imports/domain"
	"merchantfeed/internal/services/api/imports/repo"
	fdom "merchantfeed/internal/services/feedimport/domain"
)

type fakeFeed struct {
	jobs     map[string]fdom.ImportJob
	enqueued []fdom.Variant
	probed   []string
}

func (f *fakeFeed) EnqueueImport(_ context.Context, m string, v fdom.Variant) (fdom.ImportJob, error) {
	f.enqueued = append(f.enqueued, v)
	return fdom.ImportJob{ID: "j-1", MerchantID: m, Variant: v, Status: fdom.JobQueued}, nil
}

func (f *fakeFeed) Job(_ context.Context, id string) (fdom.ImportJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return fdom.ImportJob{}, perr.NotFoundf("import job %s not found", id)
	}
	return j, nil
}

func (f *fakeFeed) ProbeMerchant(_ context.Context, m string) (fdom.ProbeResult, error) {
	f.probed = append(f.probed, m)
	return fdom.ProbeResult{MerchantID: m, Resolved: fdom.CompressionGzip}, nil
}

type fakeRepo struct {
	stats     repo.RowStats
	errs      []repo.RowError
	total     int
	gotAfter  int64
	gotLimit  int
	gotStatID int64
}

func (f *fakeRepo) Stats(_ context.Context, id int64) (repo.RowStats, error) {
	if id != f.stats.ID {
		return repo.RowStats{}, perr.NotFoundf("import statistics %d not found", id)
	}
	return f.stats, nil
}

func (f *fakeRepo) Errors(_ context.Context, statsID, after int64, limit int) ([]repo.RowError, error) {
	f.gotStatID, f.gotAfter, f.gotLimit = statsID, after, limit
	var out []repo.RowError
	for _, e := range f.errs {
		if e.ID > after && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountErrors(context.Context, int64) (int, error) { return f.total, nil }

func ptr[T any](v T) *T { return &v }

func testSvc() (*Svc, *fakeFeed, *fakeRepo) {
	feed := &fakeFeed{jobs: map[string]fdom.ImportJob{
		"queued":  {ID: "queued", Status: fdom.JobQueued},
		"started": {ID: "started", Status: fdom.JobSucceeded, StatsID: ptr[int64](501)},
	}}
	r := &fakeRepo{stats: repo.RowStats{ID: 501, MerchantID: "m-1", Kind: "primary", Processed: 10}}
	return &Svc{Repo: r, feed: feed}, feed, r
}

func TestEnqueueParsesVariant(t *testing.T) {
	s, feed, _ := testSvc()

	j, err := s.Enqueue(context.Background(), domain.EnqueueInput{MerchantID: "m-1", Variant: "unmatched"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if j.Variant != "UNMATCHED_REPROCESS" || feed.enqueued[0] != fdom.VariantUnmatchedReprocess {
		t.Fatalf("job = %+v", j)
	}
	if _, err := s.Enqueue(context.Background(), domain.EnqueueInput{MerchantID: "m-1", Variant: "nightly"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestStats(t *testing.T) {
	s, _, _ := testSvc()

	got, err := s.Stats(context.Background(), "started")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got.ID != 501 || got.Processed != 10 || got.CriticalErrors == nil {
		t.Fatalf("stats = %+v", got)
	}
	if _, err := s.Stats(context.Background(), "queued"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("not started: %v", err)
	}
	if _, err := s.Stats(context.Background(), "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown job: %v", err)
	}
}

func TestErrorsPaging(t *testing.T) {
	s, _, r := testSvc()
	r.total = 3
	r.errs = []repo.RowError{
		{ID: 1, Line: 2, Message: "title is required", CreatedAt: time.Unix(0, 0)},
		{ID: 4, Line: 5, Message: "price is invalid", Context: []byte(`{"price":"x"}`)},
		{ID: 9, Line: 9, Message: "url is required"},
	}

	page, err := s.Errors(context.Background(), "started", domain.ErrorsQuery{Limit: 2})
	if err != nil {
		t.Fatalf("Errors: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor == "" || page.Total != 3 || r.gotStatID != 501 {
		t.Fatalf("page = %+v", page)
	}
	if string(page.Items[1].Context) != `{"price":"x"}` {
		t.Fatalf("context = %s", page.Items[1].Context)
	}

	page, err = s.Errors(context.Background(), "started", domain.ErrorsQuery{Cursor: page.NextCursor, Limit: 2})
	if err != nil {
		t.Fatalf("Errors page 2: %v", err)
	}
	if r.gotAfter != 4 || len(page.Items) != 1 || page.Items[0].ID != 9 || page.NextCursor != "" {
		t.Fatalf("page 2 = %+v after=%d", page, r.gotAfter)
	}
}

func TestErrorsLimitsAndCursor(t *testing.T) {
	s, _, r := testSvc()

	if _, err := s.Errors(context.Background(), "started", domain.ErrorsQuery{}); err != nil || r.gotLimit != DefaultErrorsLimit {
		t.Fatalf("default limit = %d err=%v", r.gotLimit, err)
	}
	if _, err := s.Errors(context.Background(), "started", domain.ErrorsQuery{Limit: 10_000}); err != nil || r.gotLimit != MaxErrorsLimit {
		t.Fatalf("capped limit = %d err=%v", r.gotLimit, err)
	}
	if _, err := s.Errors(context.Background(), "started", domain.ErrorsQuery{Cursor: "%%%"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad cursor: %v", err)
	}
}

func TestProbe(t *testing.T) {
	s, feed, _ := testSvc()

	if _, err := s.Probe(context.Background(), ""); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty merchant: %v", err)
	}
	got, err := s.Probe(context.Background(), "m-1")
	if err != nil || got.Resolved != fdom.CompressionGzip || len(feed.probed) != 1 {
		t.Fatalf("probe = %+v err=%v", got, err)
	}
}
