// Package domain holds the row stream types and the ports the processor talks to
package domain

import (
	"context"
	"sync/atomic"
	"time"
)

// Offer is one decoded feed row
type Offer struct {
	ID           string `json:"id" validate:"required,max=255"`
	Title        string `json:"title" validate:"required,max=1024"`
	Description  string `json:"description,omitempty" validate:"max=65535"`
	Price        string `json:"price" validate:"required,non_negative_decimal"`
	Currency     string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	URL          string `json:"url" validate:"required,url"`
	ImageURL     string `json:"image_url,omitempty" validate:"omitempty,url"`
	Brand        string `json:"brand,omitempty" validate:"max=255"`
	EAN          string `json:"ean,omitempty" validate:"omitempty,numeric,min=8,max=14"`
	Category     string `json:"category,omitempty" validate:"max=1024"`
	Availability string `json:"availability,omitempty" validate:"max=64"`

	// Line is the 1 based record number in the source, header excluded
	Line int `json:"line"`
	// Extra keeps mapped columns that are not offer fields
	Extra map[string]string `json:"extra,omitempty" validate:"-"`
}

// RowResult is what a row source yields per step
type RowResult struct {
	// EOF ends the stream; nothing else on the result is meaningful
	EOF   bool
	Offer *Offer
	// Valid is false when the row was structurally broken and the source was told to surface it
	Valid bool
	// Problem explains an invalid row
	Problem string
}

// OutcomeKind tags a row outcome
type OutcomeKind uint8

const (
	// OutcomeExported means the row reached its sink
	OutcomeExported OutcomeKind = iota
	// OutcomeRejected means the row was refused; the stream goes on
	OutcomeRejected
)

// RowOutcome is the per row result of an export
type RowOutcome struct {
	Kind    OutcomeKind
	Message string
	Context map[string]any
}

// Exported is the success outcome
func Exported() RowOutcome { return RowOutcome{Kind: OutcomeExported} }

// Rejected builds a failure outcome
func Rejected(msg string, ctx map[string]any) RowOutcome {
	return RowOutcome{Kind: OutcomeRejected, Message: msg, Context: ctx}
}

// Failed reports whether the row was rejected
func (o RowOutcome) Failed() bool { return o.Kind == OutcomeRejected }

// ImportStatistics are the running counters of one import attempt
// one writer per import; reads from other goroutines are safe
type ImportStatistics struct {
	ID         int64
	MerchantID string
	Kind       string

	processed atomic.Int64
	failed    atomic.Int64

	SuccessfullyProcessed bool
	// Critical holds abort reasons reported at the end of the stream
	Critical []string
}

// AddProcessed bumps the processed counter
func (s *ImportStatistics) AddProcessed() int64 { return s.processed.Add(1) }

// AddFailed bumps the failed counter
func (s *ImportStatistics) AddFailed() int64 { return s.failed.Add(1) }

// Processed returns the processed row count
func (s *ImportStatistics) Processed() int64 { return s.processed.Load() }

// Failed returns the failed row count
func (s *ImportStatistics) Failed() int64 { return s.failed.Load() }

// Restore seeds counters from a persisted record
func (s *ImportStatistics) Restore(processed, failed int64) {
	s.processed.Store(processed)
	s.failed.Store(failed)
}

// Summary is the end state of a row stream
type Summary struct {
	Processed int64
	Failed    int64
	Aborted   bool
	Err       error
}

// RowSource yields rows lazily; an error is a non row failure and ends the stream
type RowSource interface {
	Next(ctx context.Context) (RowResult, error)
	// Offset is how many input bytes have been consumed so far
	Offset() int64
}

// Exporter sends one offer downstream; rejections come back as outcomes, errors abort
type Exporter interface {
	Export(ctx context.Context, merchantID string, o *Offer) (RowOutcome, error)
}

// Guard checks one row before export; an error aborts the stream
type Guard interface {
	Check(stats *ImportStatistics, offset int64) error
}

// ErrorAggregator collects failed rows and flushes them once at the end
type ErrorAggregator interface {
	Add(stats *ImportStatistics, merchantID string, o *Offer, msg string, context map[string]any)
	Save(ctx context.Context) error
}

// StatsReporter persists counters and critical errors once at the end
type StatsReporter interface {
	ReportCriticalErrors(ctx context.Context, stats *ImportStatistics) error
}

// AbortHandler is told about the non row failure that ended a stream
type AbortHandler interface {
	DetectedProcessingError(ctx context.Context, stats *ImportStatistics, err error)
}

// ProcessorPort runs one row stream
type ProcessorPort interface {
	Process(ctx context.Context, stats *ImportStatistics, src RowSource) Summary
}

// OfferSink persists offers for one import variant
type OfferSink interface {
	UpsertOffer(ctx context.Context, merchantID string, o *Offer) error
	UpsertUnmatched(ctx context.Context, merchantID string, o *Offer) error
}

// ErrorEntry is one failed row as written to the import error log
type ErrorEntry struct {
	StatsID    int64
	MerchantID string
	OfferID    string
	Line       int
	Message    string
	Context    map[string]any
	Offer      *Offer
	At         time.Time
}

// StatsSnapshot is the persisted end state of an import attempt
type StatsSnapshot struct {
	ID                    int64
	MerchantID            string
	Kind                  string
	Processed             int64
	Failed                int64
	SuccessfullyProcessed bool
	Critical              []string
	AbortCode             string
	FinishedAt            time.Time
}

// Snapshot copies the counters into a plain value
func (s *ImportStatistics) Snapshot(now time.Time) StatsSnapshot {
	return StatsSnapshot{
		ID:                    s.ID,
		MerchantID:            s.MerchantID,
		Kind:                  s.Kind,
		Processed:             s.Processed(),
		Failed:                s.Failed(),
		SuccessfullyProcessed: s.SuccessfullyProcessed,
		Critical:              append([]string(nil), s.Critical...),
		FinishedAt:            now.UTC(),
	}
}

// ErrorLogWriter stores error log entries in one go
type ErrorLogWriter interface {
	SaveErrors(ctx context.Context, entries []ErrorEntry) error
}

// StatsWriter stores the final statistics of an import
type StatsWriter interface {
	FinishStats(ctx context.Context, s StatsSnapshot) error
}

// RunSink receives a copy of every finished import for analytics
type RunSink interface {
	RecordRun(ctx context.Context, s StatsSnapshot) error
}

// SourceSettings are the per merchant CSV layout settings
type SourceSettings struct {
	Delimiter string
	Enclosure string
	// Mapping maps a source header to an offer field
	Mapping map[string]string
}

// StorageRepo is the Postgres surface of the row processor
type StorageRepo interface {
	UpsertOffer(ctx context.Context, merchantID string, o *Offer) error
	UpsertUnmatched(ctx context.Context, merchantID string, o *Offer) error
	InsertErrors(ctx context.Context, entries []ErrorEntry) error
	FinishStats(ctx context.Context, s StatsSnapshot) error
	LoadStats(ctx context.Context, id int64) (StatsSnapshot, error)
	SourceSettings(ctx context.Context, merchantID string) (SourceSettings, error)
}
