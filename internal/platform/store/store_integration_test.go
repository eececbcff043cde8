//go:build integration_pg

package store_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"merchantfeed/internal/platform/store"
	"merchantfeed/internal/platform/store/pgtest"
)

func TestPG_QueryAndColumns(t *testing.T) {
	s := pgtest.Start(t)
	ctx := context.Background()

	if _, err := s.PG.Exec(ctx, `
		insert into merchant_feeds (merchant_id, url, format) values ($1, $2, 'csv'), ($3, $4, 'xml')
	`, "m-1", "https://feeds.test/m-1.csv", "m-2", "https://feeds.test/m-2.xml"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := s.PG.Query(ctx, `select merchant_id, format from merchant_feeds order by merchant_id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	if cols := rows.Columns(); !slices.Equal(cols, []string{"merchant_id", "format"}) {
		t.Fatalf("columns = %v", cols)
	}
	var got []string
	for rows.Next() {
		var id, format string
		if err := rows.Scan(&id, &format); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, id+":"+format)
	}
	if !slices.Equal(got, []string{"m-1:csv", "m-2:xml"}) {
		t.Fatalf("rows = %v", got)
	}
}

func TestPG_TxCommitAndRollback(t *testing.T) {
	s := pgtest.Start(t)
	ctx := context.Background()
	insert := func(q store.RowQuerier, merchant string) error {
		_, err := q.Exec(ctx, `insert into merchant_import_leases (merchant_id, holder, expires_at) values ($1, 'w-1', now())`, merchant)
		return err
	}

	if err := s.PG.Tx(ctx, func(q store.RowQuerier) error { return insert(q, "m-commit") }); err != nil {
		t.Fatalf("commit: %v", err)
	}
	errAbort := errors.New("abort")
	err := s.PG.Tx(ctx, func(q store.RowQuerier) error {
		if err := insert(q, "m-rollback"); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("rollback err = %v", err)
	}

	var n int
	if err := s.PG.QueryRow(ctx, `select count(*) from merchant_import_leases`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("leases = %d err=%v", n, err)
	}
}
