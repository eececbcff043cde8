package store

import (
	"context"
	"fmt"

	"merchantfeed/internal/platform/store/ch"
)

// chClient is the part of *ch.CH the seam needs
type chClient interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// clickhouseAdapter narrows *ch.CH to the Clickhouse seam
type clickhouseAdapter struct{ c chClient }

func newCHAdapter(c chClient) Clickhouse { return clickhouseAdapter{c: c} }

// Insert accepts [][]any only
func (a clickhouseAdapter) Insert(ctx context.Context, table string, data any) error {
	rows, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: clickhouse insert into %s wants [][]any, got %T", table, data)
	}
	return a.c.Insert(ctx, table, rows)
}

func (a clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := a.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rs}, nil
}

func (a clickhouseAdapter) Ping(ctx context.Context) error { return a.c.Ping(ctx) }

func (a clickhouseAdapter) Close() error { return a.c.Close() }

// chRows drops the Close error clickhouse rows return
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
