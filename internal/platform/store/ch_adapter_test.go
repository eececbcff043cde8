package store

import (
	"context"
	"errors"
	"testing"

	"merchantfeed/internal/platform/store/ch"
)

type fakeCH struct {
	table   string
	rows    [][]any
	qErr    error
	pingErr error
	closed  bool
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (ch.Rows, error) {
	if f.qErr != nil {
		return nil, f.qErr
	}
	return &fakeCHRows{cols: []string{"merchant_id"}}, nil
}

func (f *fakeCH) Ping(context.Context) error { return f.pingErr }
func (f *fakeCH) Close() error               { f.closed = true; return nil }

type fakeCHRows struct {
	cols   []string
	closed bool
}

func (r *fakeCHRows) Next() bool        { return false }
func (r *fakeCHRows) Scan(...any) error { return nil }
func (r *fakeCHRows) Err() error        { return nil }
func (r *fakeCHRows) Close() error      { r.closed = true; return nil }
func (r *fakeCHRows) Columns() []string { return r.cols }

func TestCHAdapter_InsertShape(t *testing.T) {
	t.Parallel()

	f := &fakeCH{}
	a := newCHAdapter(f)

	if err := a.Insert(context.Background(), "feed_import_runs", []string{"nope"}); err == nil {
		t.Fatalf("expected shape error")
	}
	rows := [][]any{{"m1", uint64(10)}}
	if err := a.Insert(context.Background(), "feed_import_runs", rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if f.table != "feed_import_runs" || len(f.rows) != 1 {
		t.Fatalf("insert not delegated: table=%q rows=%v", f.table, f.rows)
	}
}

func TestCHAdapter_QueryWrapsRows(t *testing.T) {
	t.Parallel()

	a := newCHAdapter(&fakeCH{})
	rs, err := a.Query(context.Background(), "SELECT merchant_id FROM feed_import_runs")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if cols := rs.Columns(); len(cols) != 1 || cols[0] != "merchant_id" {
		t.Fatalf("Columns = %v", cols)
	}
	if rs.Next() {
		t.Fatalf("expected no rows")
	}
	rs.Close()

	boom := errors.New("boom")
	if _, err := newCHAdapter(&fakeCH{qErr: boom}).Query(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestCHAdapter_PingAndClose(t *testing.T) {
	t.Parallel()

	f := &fakeCH{pingErr: errors.New("down")}
	a := newCHAdapter(f).(clickhouseAdapter)
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
	if err := a.Close(); err != nil || !f.closed {
		t.Fatalf("Close not delegated err=%v closed=%v", err, f.closed)
	}
}
