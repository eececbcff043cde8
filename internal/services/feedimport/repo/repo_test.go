package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"merchantfeed/internal/modkit/repokit"
	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"
)

type fakeTag int64

func (t fakeTag) String() string      { return "" }
func (t fakeTag) RowsAffected() int64 { return int64(t) }

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

type fakeRows struct {
	scans []scanFunc
	i     int
}

func (r *fakeRows) Next() bool          { r.i++; return r.i <= len(r.scans) }
func (r *fakeRows) Scan(d ...any) error { return r.scans[r.i-1](d...) }
func (r *fakeRows) Err() error          { return nil }
func (r *fakeRows) Close()              {}
func (r *fakeRows) Columns() []string   { return nil }

type fakeQ struct {
	sql      []string
	args     [][]any
	affected int64
	row      scanFunc
	rows     *fakeRows
}

func (f *fakeQ) record(sql string, args []any) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	f.record(sql, args)
	return fakeTag(f.affected), nil
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (repokit.Rows, error) {
	f.record(sql, args)
	return f.rows, nil
}

func (f *fakeQ) QueryRow(_ context.Context, sql string, args ...any) repokit.Row {
	f.record(sql, args)
	return f.row
}

func TestFeedConfigMissingIsNil(t *testing.T) {
	q := &fakeQ{row: func(...any) error { return stdsql.ErrNoRows }}
	fc, err := NewPG().Bind(q).FeedConfig(context.Background(), "m1")
	if err != nil || fc != nil {
		t.Fatalf("fc=%v err=%v", fc, err)
	}
}

func TestFeedConfigScan(t *testing.T) {
	q := &fakeQ{row: func(d ...any) error {
		*d[0].(*string) = "https://feeds.test/m1.csv.gz"
		*d[1].(*stdsql.NullString) = stdsql.NullString{String: "u", Valid: true}
		*d[3].(*string) = "csv"
		*d[4].(*bool) = true
		*d[5].(*string) = "unknown"
		*d[7].(*stdsql.NullString) = stdsql.NullString{String: ";", Valid: true}
		return nil
	}}
	fc, err := NewPG().Bind(q).FeedConfig(context.Background(), "m1")
	if err != nil {
		t.Fatalf("FeedConfig: %v", err)
	}
	if fc.URL != "https://feeds.test/m1.csv.gz" || fc.Username != "u" || fc.Password != "" ||
		fc.Format != dom.FormatCSV || !fc.Compressed || fc.Compression != dom.CompressionUnknown || fc.Delimiter != ";" {
		t.Fatalf("fc = %+v", fc)
	}
}

func TestEnqueueAssignsUUID(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQ{row: func(d ...any) error { *d[0].(*time.Time) = at; return nil }}
	j, err := NewPG().Bind(q).Enqueue(context.Background(), "m1", dom.VariantUnmatchedReprocess)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if len(j.ID) != 36 || j.Status != dom.JobQueued || !j.EnqueuedAt.Equal(at) {
		t.Fatalf("job = %+v", j)
	}
	if q.args[0][2] != "UNMATCHED_REPROCESS" {
		t.Fatalf("variant arg = %v", q.args[0][2])
	}
}

func TestLeasePassesIntervalAndScans(t *testing.T) {
	scan := func(id string) scanFunc {
		return func(d ...any) error {
			*d[0].(*string) = id
			*d[1].(*string) = "m1"
			*d[2].(*string) = "PRIMARY_IMPORT"
			*d[3].(*string) = dom.JobQueued
			*d[4].(*int) = 1
			return nil
		}
	}
	q := &fakeQ{rows: &fakeRows{scans: []scanFunc{scan("a"), scan("b")}}}
	jobs, err := NewPG().Bind(q).Lease(context.Background(), "w1", 4, 90*time.Second)
	if err != nil {
		t.Fatalf("Lease: %v", err)
	}
	if len(jobs) != 2 || jobs[1].ID != "b" || jobs[0].Variant != dom.VariantPrimaryImport {
		t.Fatalf("jobs = %+v", jobs)
	}
	if !strings.Contains(q.sql[0], "FOR UPDATE SKIP LOCKED") {
		t.Fatalf("lease must skip locked rows")
	}
	if got := q.args[0]; got[0] != 4 || got[1] != "w1" || got[2] != "1m30s" {
		t.Fatalf("args = %v", got)
	}
}

func TestFailStoresRetryable(t *testing.T) {
	q := &fakeQ{affected: 1}
	if err := NewPG().Bind(q).Fail(context.Background(), "j1", "fetch failed", "network_failure", true); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if got := q.args[0]; got[2] != "network_failure" || got[3] != true {
		t.Fatalf("args = %v", got)
	}
}

func TestTransitionOnMissingJob(t *testing.T) {
	q := &fakeQ{affected: 0}
	err := NewPG().Bind(q).Complete(context.Background(), "j1")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestGetRejectsNonUUID(t *testing.T) {
	q := &fakeQ{}
	_, err := NewPG().Bind(q).Get(context.Background(), "nope")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if len(q.sql) != 0 {
		t.Fatalf("no query expected")
	}

	q.row = func(...any) error { return stdsql.ErrNoRows }
	_, err = NewPG().Bind(q).Get(context.Background(), "6f1c1a2e-8d0e-4f43-9d0b-3c9e2f5b7a10")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestCreateStatsUsesShortKind(t *testing.T) {
	q := &fakeQ{row: func(d ...any) error { *d[0].(*int64) = 77; return nil }}
	ref, err := NewPG().Bind(q).CreateStats(context.Background(), "m1", dom.VariantPrimaryImport)
	if err != nil {
		t.Fatalf("CreateStats: %v", err)
	}
	if ref.ID != 77 || ref.Kind != "primary" {
		t.Fatalf("ref = %+v", ref)
	}

	q.row = func(...any) error { return errors.New("down") }
	if _, err := NewPG().Bind(q).CreateStats(context.Background(), "m1", dom.VariantPrimaryImport); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("want db error, got %v", err)
	}
}
