package guardrails

import (
	"context"
	"errors"
	"time"

	"merchantfeed/internal/modkit/repokit"
	"merchantfeed/internal/platform/logger"
)

// ErrLeaseHeld signals another worker is importing the merchant already
var ErrLeaseHeld = errors.New("feedimport: merchant lease already held")

// MerchantLease runs do while holding the merchant import lease
type MerchantLease func(ctx context.Context, merchantID, holder string, do func(context.Context) error) error

// MakeMerchantLease returns a lease backed by the merchant_import_leases table
// a lease past its expiry is taken over; the row is removed once do returns
func MakeMerchantLease(db repokit.TxRunner, ttl time.Duration) MerchantLease {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return func(ctx context.Context, merchantID, holder string, do func(context.Context) error) error {
		var claimed bool
		err := db.Tx(ctx, func(q repokit.Queryer) error {
			rows, err := q.Query(ctx, `
				insert into merchant_import_leases (merchant_id, holder, expires_at)
				values ($1, $2, now() + make_interval(secs => $3))
				on conflict (merchant_id) do update
				set holder = excluded.holder, expires_at = excluded.expires_at
				where merchant_import_leases.expires_at < now()
				returning true
			`, merchantID, holder, ttl.Seconds())
			if err != nil {
				return err
			}
			defer rows.Close()
			if rows.Next() {
				claimed = true
			}
			return rows.Err()
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld
		}

		defer func() {
			// release on a fresh context so a canceled import still frees the merchant
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if _, err := db.Exec(rctx, `
				delete from merchant_import_leases where merchant_id = $1 and holder = $2
			`, merchantID, holder); err != nil {
				logger.C(ctx).Warn().Err(err).Str("merchant_id", merchantID).Msg("merchant lease release failed")
			}
		}()
		return do(ctx)
	}
}
