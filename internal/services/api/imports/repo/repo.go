// Package repo provides postgres reads for import statistics and error logs
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"merchantfeed/internal/modkit/repokit"
	perr "merchantfeed/internal/platform/errors"
)

// Repo is the read surface of the imports API
type Repo interface {
	Stats(ctx context.Context, id int64) (RowStats, error)
	Errors(ctx context.Context, statsID, afterID int64, limit int) ([]RowError, error)
	CountErrors(ctx context.Context, statsID int64) (int, error)
}

// RowStats is an import_statistics row
type RowStats struct {
	ID                    int64
	MerchantID            string
	Kind                  string
	Processed             int64
	Failed                int64
	SuccessfullyProcessed bool
	Critical              []string
	AbortCode             string
	FinishedAt            *time.Time
}

// RowError is an import_error_log row
type RowError struct {
	ID        int64
	OfferID   string
	Line      int
	Message   string
	Context   []byte
	CreatedAt time.Time
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Stats(ctx context.Context, id int64) (RowStats, error) {
	const sql = `
select id, merchant_id, kind, processed, failed, successfully_processed,
       coalesce(critical_errors, '{}'), coalesce(abort_code, ''), finished_at
from import_statistics
where id = $1
`
	var s RowStats
	err := r.q.QueryRow(ctx, sql, id).Scan(
		&s.ID, &s.MerchantID, &s.Kind, &s.Processed, &s.Failed, &s.SuccessfullyProcessed,
		&s.Critical, &s.AbortCode, &s.FinishedAt,
	)
	if errors.Is(err, stdsql.ErrNoRows) {
		return RowStats{}, perr.NotFoundf("import statistics %d not found", id)
	}
	if err != nil {
		return RowStats{}, perr.FromPostgresf(err, "load import statistics %d", id)
	}
	return s, nil
}

func (r *queries) Errors(ctx context.Context, statsID, afterID int64, limit int) ([]RowError, error) {
	// keyset paging on the serial id
	const sql = `
select id, coalesce(offer_id, ''), line, message, context, created_at
from import_error_log
where import_stats_id = $1 and id > $2
order by id
limit $3
`
	rows, err := r.q.Query(ctx, sql, statsID, afterID, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list import errors of %d", statsID)
	}
	defer rows.Close()

	out := make([]RowError, 0, limit)
	for rows.Next() {
		var e RowError
		if err := rows.Scan(&e.ID, &e.OfferID, &e.Line, &e.Message, &e.Context, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *queries) CountErrors(ctx context.Context, statsID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `select count(*) from import_error_log where import_stats_id = $1`, statsID).Scan(&n)
	if err != nil {
		return 0, perr.FromPostgresf(err, "count import errors of %d", statsID)
	}
	return n, nil
}
