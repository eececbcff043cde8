// Package repo provides postgres and clickhouse access for the row processor
package repo

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"merchantfeed/internal/modkit/repokit"
	perr "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/services/rowprocess/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

const upsertOfferCols = `(
	merchant_id, offer_id, title, description, price, currency, url, image_url,
	brand, ean, category, availability, extra, updated_at
) VALUES ($1, $2, $3, NULLIF($4,''), $5::numeric, NULLIF($6,''), $7, NULLIF($8,''),
	NULLIF($9,''), NULLIF($10,''), NULLIF($11,''), NULLIF($12,''), $13::jsonb, now())
ON CONFLICT (merchant_id, offer_id) DO UPDATE
SET title        = EXCLUDED.title,
    description  = EXCLUDED.description,
    price        = EXCLUDED.price,
    currency     = EXCLUDED.currency,
    url          = EXCLUDED.url,
    image_url    = EXCLUDED.image_url,
    brand        = EXCLUDED.brand,
    ean          = EXCLUDED.ean,
    category     = EXCLUDED.category,
    availability = EXCLUDED.availability,
    extra        = EXCLUDED.extra,
    updated_at   = EXCLUDED.updated_at`

// UpsertOffer writes a primary import offer
func (r *queries) UpsertOffer(ctx context.Context, merchantID string, o *domain.Offer) error {
	return r.upsert(ctx, "offers", merchantID, o)
}

// UpsertUnmatched writes an offer of an unmatched reprocess run
func (r *queries) UpsertUnmatched(ctx context.Context, merchantID string, o *domain.Offer) error {
	return r.upsert(ctx, "unmatched_offers", merchantID, o)
}

func (r *queries) upsert(ctx context.Context, table, merchantID string, o *domain.Offer) error {
	extra, err := jsonArg(o.Extra)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeRowProcessing, "encode offer extras")
	}
	_, err = r.q.Exec(ctx, "INSERT INTO "+table+" "+upsertOfferCols,
		merchantID, o.ID, o.Title, o.Description, o.Price, o.Currency, o.URL, o.ImageURL,
		o.Brand, o.EAN, o.Category, o.Availability, extra,
	)
	if err != nil {
		return perr.FromPostgresf(err, "upsert offer %s into %s", o.ID, table)
	}
	return nil
}

// InsertErrors writes error log rows in one statement
func (r *queries) InsertErrors(ctx context.Context, entries []domain.ErrorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	const cols = 8
	var sb strings.Builder
	sb.WriteString(`INSERT INTO import_error_log
		(import_stats_id, merchant_id, offer_id, line, message, context, offer, created_at) VALUES `)

	args := make([]any, 0, len(entries)*cols)
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*cols + 1
		fmt.Fprintf(&sb, "($%d,$%d,NULLIF($%d,''),$%d,$%d,$%d::jsonb,$%d::jsonb,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		ctxJSON, err := jsonArg(e.Context)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "encode error context for line %d", e.Line)
		}
		var offerJSON *string
		if e.Offer != nil {
			if offerJSON, err = jsonArg(e.Offer); err != nil {
				return perr.Wrapf(err, perr.ErrorCodeUnknown, "encode offer for line %d", e.Line)
			}
		}
		at := e.At
		if at.IsZero() {
			at = time.Now()
		}
		args = append(args,
			nullableID(e.StatsID), e.MerchantID, e.OfferID, e.Line, e.Message,
			ctxJSON, offerJSON, at.UTC(),
		)
	}
	_, err := r.q.Exec(ctx, sb.String(), args...)
	return err
}

// FinishStats stores the final counters of an import
func (r *queries) FinishStats(ctx context.Context, s domain.StatsSnapshot) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE import_statistics SET
			processed = $2,
			failed = $3,
			successfully_processed = $4,
			critical_errors = $5,
			abort_code = NULLIF($6,''),
			finished_at = $7
		WHERE id = $1
	`,
		s.ID, s.Processed, s.Failed, s.SuccessfullyProcessed, critical(s.Critical), s.AbortCode, s.FinishedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.Newf(perr.ErrorCodeNotFound, "import statistics %d not found", s.ID)
	}
	return nil
}

// LoadStats reads the persisted statistics of an import
func (r *queries) LoadStats(ctx context.Context, id int64) (domain.StatsSnapshot, error) {
	var (
		s        domain.StatsSnapshot
		abort    stdsql.NullString
		finished *time.Time
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, merchant_id, kind, processed, failed, successfully_processed,
		       COALESCE(critical_errors, '{}'), abort_code, finished_at
		FROM import_statistics
		WHERE id = $1
	`, id).Scan(&s.ID, &s.MerchantID, &s.Kind, &s.Processed, &s.Failed, &s.SuccessfullyProcessed,
		&s.Critical, &abort, &finished)
	if errors.Is(err, stdsql.ErrNoRows) {
		return domain.StatsSnapshot{}, perr.Newf(perr.ErrorCodeNotFound, "import statistics %d not found", id)
	}
	if err != nil {
		return domain.StatsSnapshot{}, err
	}
	s.AbortCode = abort.String
	if finished != nil {
		s.FinishedAt = finished.UTC()
	}
	return s, nil
}

// SourceSettings reads the CSV layout configured for a merchant feed
// a merchant without a feed row gets the zero settings
func (r *queries) SourceSettings(ctx context.Context, merchantID string) (domain.SourceSettings, error) {
	var (
		delim, encl stdsql.NullString
		mapping     []byte
	)
	err := r.q.QueryRow(ctx, `
		SELECT delimiter, enclosure, mapping
		FROM merchant_feeds
		WHERE merchant_id = $1
	`, merchantID).Scan(&delim, &encl, &mapping)
	if errors.Is(err, stdsql.ErrNoRows) {
		return domain.SourceSettings{}, nil
	}
	if err != nil {
		return domain.SourceSettings{}, err
	}
	out := domain.SourceSettings{Delimiter: delim.String, Enclosure: encl.String}
	if len(mapping) > 0 {
		if err := json.Unmarshal(mapping, &out.Mapping); err != nil {
			return domain.SourceSettings{}, perr.Wrapf(err, perr.ErrorCodeConfiguration,
				"merchant %s has an unreadable column mapping", merchantID)
		}
	}
	return out, nil
}

// jsonArg encodes v for a ::jsonb parameter; nil maps become NULL
func jsonArg[T any](v T) (*string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	s := string(b)
	return &s, nil
}

func nullableID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func critical(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
