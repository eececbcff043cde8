package service

import (
	"context"
	"io"

	"merchantfeed/internal/adapters/feed/csvrows"
	fdom "merchantfeed/internal/services/feedimport/domain"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

// Config controls one row stream run
type Config struct {
	BatchSize     int64
	MaxErrorRate  int
	MaxFileSize   int64
	Delimiter     string
	Enclosure     string
	SkipInvalid   bool
	ErrorLogLimit int
}

// RunInput names the import a row stream belongs to
type RunInput struct {
	MerchantID string
	// StatsID is zero when the import has no statistics row
	StatsID int64
	Variant fdom.Variant
}

// Store is what a run needs from persistence
type Store interface {
	dom.OfferSink
	dom.ErrorLogWriter
	dom.StatsWriter
	LoadStats(ctx context.Context, id int64) (*dom.ImportStatistics, error)
	SourceSettings(ctx context.Context, merchantID string) (dom.SourceSettings, error)
}

// Runner builds a fresh processor per run and feeds it a CSV stream
type Runner struct {
	store Store
	runs  dom.RunSink
	cfg   Config
}

// NewRunner constructs a runner; runs may be nil
func NewRunner(store Store, runs dom.RunSink, cfg Config) *Runner {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Runner{store: store, runs: runs, cfg: cfg}
}

// Run processes r as the row stream of in
// setup failures come back as errors; stream failures are reported on the summary
func (rn *Runner) Run(ctx context.Context, in RunInput, r io.Reader) (dom.Summary, error) {
	stats, err := rn.statistics(ctx, in)
	if err != nil {
		return dom.Summary{}, err
	}

	settings, err := rn.store.SourceSettings(ctx, in.MerchantID)
	if err != nil {
		return dom.Summary{}, err
	}
	src, err := csvrows.New(r, csvrows.Options{
		Delimiter:   pick(settings.Delimiter, rn.cfg.Delimiter),
		Enclosure:   pick(settings.Enclosure, rn.cfg.Enclosure),
		Mapping:     settings.Mapping,
		SkipInvalid: rn.cfg.SkipInvalid,
	})
	if err != nil {
		return dom.Summary{}, err
	}

	reporter := NewReporter(rn.store, rn.runs)
	p := NewProcessor(
		NewExporter(rn.store, in.Variant),
		NewErrorLog(rn.store, rn.cfg.ErrorLogLimit),
		reporter,
		reporter,
		SizeGuard{MaxBytes: rn.cfg.MaxFileSize},
		NewErrorRateBreaker(rn.cfg.BatchSize, rn.cfg.MaxErrorRate),
	)
	return p.Process(ctx, stats, src), nil
}

func (rn *Runner) statistics(ctx context.Context, in RunInput) (*dom.ImportStatistics, error) {
	if in.StatsID <= 0 {
		return &dom.ImportStatistics{MerchantID: in.MerchantID, Kind: in.Variant.Short()}, nil
	}
	stats, err := rn.store.LoadStats(ctx, in.StatsID)
	if err != nil {
		return nil, err
	}
	if stats.MerchantID == "" {
		stats.MerchantID = in.MerchantID
	}
	return stats, nil
}

func pick(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
