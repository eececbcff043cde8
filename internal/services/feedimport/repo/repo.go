// Package repo provides postgres access for merchant feeds, import jobs and statistics
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"merchantfeed/internal/modkit/repokit"
	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"
)

type (
	// PG is a Postgres binder for dom.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for dom.StorageRepo
func NewPG() repokit.Binder[dom.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) dom.StorageRepo { return &queries{q: q} }

// FeedConfig loads the feed configuration of a merchant; nil when none is stored
func (r *queries) FeedConfig(ctx context.Context, merchantID string) (*dom.FeedConfig, error) {
	var (
		fc                   dom.FeedConfig
		format, compression  string
		user, pass, entity   stdsql.NullString
		delimiter, enclosure stdsql.NullString
	)
	err := r.q.QueryRow(ctx, `
		SELECT url, username, password, format, compressed, COALESCE(compression, 'none'),
		       xml_entity, delimiter, enclosure
		FROM merchant_feeds
		WHERE merchant_id = $1 AND enabled
	`, merchantID).Scan(&fc.URL, &user, &pass, &format, &fc.Compressed, &compression,
		&entity, &delimiter, &enclosure)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.FromPostgresf(err, "load feed config for merchant %s", merchantID)
	}
	fc.Username, fc.Password = user.String, pass.String
	fc.Format = dom.Format(format)
	fc.Compression = dom.Compression(compression)
	fc.XMLEntity = entity.String
	fc.Delimiter, fc.Enclosure = delimiter.String, enclosure.String
	return &fc, nil
}

// Enqueue adds a queued import job
func (r *queries) Enqueue(ctx context.Context, merchantID string, v dom.Variant) (dom.ImportJob, error) {
	j := dom.ImportJob{ID: uuid.NewString(), MerchantID: merchantID, Variant: v, Status: dom.JobQueued}
	err := r.q.QueryRow(ctx, `
		INSERT INTO import_jobs (job_id, merchant_id, variant, status, attempts, created_at)
		VALUES ($1::uuid, $2, $3, $4, 0, now())
		RETURNING created_at
	`, j.ID, merchantID, string(v), dom.JobQueued).Scan(&j.EnqueuedAt)
	if err != nil {
		return dom.ImportJob{}, perr.FromPostgresf(err, "enqueue import for merchant %s", merchantID)
	}
	return j, nil
}

const jobCols = `job_id::text, merchant_id, variant, status, attempts, import_stats_id,
	COALESCE(last_error, ''), COALESCE(error_kind, ''), retryable, created_at, started_at, finished_at`

// Lease claims up to limit queued jobs for workerID
// a running job whose lease expired is handed out again
func (r *queries) Lease(ctx context.Context, workerID string, limit int, leaseFor time.Duration) ([]dom.ImportJob, error) {
	if workerID == "" {
		workerID = uuid.NewString()
	}
	const sqlq = `
		WITH ready AS (
			SELECT job_id
			  FROM import_jobs
			 WHERE (status = 'queued' AND leased_by IS NULL)
			    OR (status IN ('queued', 'running') AND lease_expires_at < now())
			 ORDER BY created_at ASC
			 LIMIT $1
			 FOR UPDATE SKIP LOCKED
		), upd AS (
			UPDATE import_jobs j
			   SET leased_by = $2,
			       lease_expires_at = now() + $3::interval,
			       attempts = j.attempts + 1,
			       updated_at = now()
			 WHERE j.job_id IN (SELECT job_id FROM ready)
			RETURNING j.*
		)
		SELECT ` + jobCols + `
		  FROM upd
		 ORDER BY created_at ASC
	`
	rows, err := r.q.Query(ctx, sqlq, limit, workerID, leaseFor.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dom.ImportJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Start marks a leased job running and links its statistics row
func (r *queries) Start(ctx context.Context, jobID string, statsID int64) error {
	return r.transition(ctx, `
		UPDATE import_jobs
		   SET status = 'running', import_stats_id = $2, started_at = now(), updated_at = now()
		 WHERE job_id = $1::uuid
	`, jobID, statsID)
}

// Complete marks a job succeeded and drops its lease
func (r *queries) Complete(ctx context.Context, jobID string) error {
	return r.transition(ctx, `
		UPDATE import_jobs
		   SET status = 'succeeded', finished_at = now(), updated_at = now(),
		       leased_by = NULL, lease_expires_at = NULL,
		       last_error = NULL, error_kind = NULL, retryable = false
		 WHERE job_id = $1::uuid
	`, jobID)
}

// Fail marks a job failed; retryable is stored for whoever reschedules
func (r *queries) Fail(ctx context.Context, jobID, msg, kind string, retryable bool) error {
	return r.transition(ctx, `
		UPDATE import_jobs
		   SET status = 'failed', finished_at = now(), updated_at = now(),
		       leased_by = NULL, lease_expires_at = NULL,
		       last_error = $2, error_kind = NULLIF($3, ''), retryable = $4
		 WHERE job_id = $1::uuid
	`, jobID, msg, kind, retryable)
}

// Get reads one job
func (r *queries) Get(ctx context.Context, jobID string) (dom.ImportJob, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return dom.ImportJob{}, perr.InvalidArgf("job id %q is not a uuid", jobID)
	}
	j, err := scanJob(r.q.QueryRow(ctx, `SELECT `+jobCols+` FROM import_jobs WHERE job_id = $1::uuid`, jobID))
	if errors.Is(err, stdsql.ErrNoRows) {
		return dom.ImportJob{}, perr.NotFoundf("import job %s not found", jobID)
	}
	return j, err
}

// CreateStats opens the statistics row of an import attempt
func (r *queries) CreateStats(ctx context.Context, merchantID string, v dom.Variant) (dom.StatsRef, error) {
	ref := dom.StatsRef{Kind: v.Short()}
	err := r.q.QueryRow(ctx, `
		INSERT INTO import_statistics (merchant_id, kind, processed, failed, successfully_processed, started_at)
		VALUES ($1, $2, 0, 0, false, now())
		RETURNING id
	`, merchantID, ref.Kind).Scan(&ref.ID)
	if err != nil {
		return dom.StatsRef{}, perr.FromPostgresf(err, "create import statistics for merchant %s", merchantID)
	}
	return ref, nil
}

func (r *queries) transition(ctx context.Context, sql string, args ...any) error {
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("import job %v not found", args[0])
	}
	return nil
}

func scanJob(row repokit.Row) (dom.ImportJob, error) {
	var (
		j       dom.ImportJob
		variant string
	)
	err := row.Scan(&j.ID, &j.MerchantID, &variant, &j.Status, &j.Attempts, &j.StatsID,
		&j.LastError, &j.ErrorKind, &j.Retryable, &j.EnqueuedAt, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		return dom.ImportJob{}, err
	}
	j.Variant = dom.Variant(variant)
	return j, nil
}
