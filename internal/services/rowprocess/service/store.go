package service

import (
	"context"

	"merchantfeed/internal/modkit/repokit"
	"merchantfeed/internal/services/rowprocess/domain"
)

// Storage adapts a bound repo to the sinks the processor writes through
// offers go straight to the pool; the error log and statistics use a transaction each
type Storage struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
}

var (
	_ domain.OfferSink      = (*Storage)(nil)
	_ domain.ErrorLogWriter = (*Storage)(nil)
	_ domain.StatsWriter    = (*Storage)(nil)
)

// NewStorage binds a repo to a transaction runner
func NewStorage(db repokit.TxRunner, b repokit.Binder[domain.StorageRepo]) *Storage {
	return &Storage{DB: db, Binder: b}
}

// UpsertOffer implements domain.OfferSink
func (s *Storage) UpsertOffer(ctx context.Context, merchantID string, o *domain.Offer) error {
	return s.Binder.Bind(s.DB).UpsertOffer(ctx, merchantID, o)
}

// UpsertUnmatched implements domain.OfferSink
func (s *Storage) UpsertUnmatched(ctx context.Context, merchantID string, o *domain.Offer) error {
	return s.Binder.Bind(s.DB).UpsertUnmatched(ctx, merchantID, o)
}

// SaveErrors implements domain.ErrorLogWriter
func (s *Storage) SaveErrors(ctx context.Context, entries []domain.ErrorEntry) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).InsertErrors(ctx, entries)
	})
}

// FinishStats implements domain.StatsWriter
func (s *Storage) FinishStats(ctx context.Context, snap domain.StatsSnapshot) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).FinishStats(ctx, snap)
	})
}

// LoadStats seeds running statistics from the persisted row
func (s *Storage) LoadStats(ctx context.Context, id int64) (*domain.ImportStatistics, error) {
	snap, err := s.Binder.Bind(s.DB).LoadStats(ctx, id)
	if err != nil {
		return nil, err
	}
	st := &domain.ImportStatistics{ID: snap.ID, MerchantID: snap.MerchantID, Kind: snap.Kind}
	st.Restore(snap.Processed, snap.Failed)
	return st, nil
}

// SourceSettings reads the merchant CSV layout
func (s *Storage) SourceSettings(ctx context.Context, merchantID string) (domain.SourceSettings, error) {
	return s.Binder.Bind(s.DB).SourceSettings(ctx, merchantID)
}
