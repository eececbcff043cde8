package service

import (
	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

// Defaults for the guards
const (
	DefaultBatchSize    = 2000
	DefaultMaxErrorRate = 90
	DefaultMaxFileSize  = 1 << 30
)

// ErrorRateBreaker aborts an import whose failed row share is too high
// it only looks at batch boundaries, so the ratio is allowed to spike in between
type ErrorRateBreaker struct {
	BatchSize int64
	// MaxRate is a percentage; the breaker opens when the share is strictly greater
	MaxRate int
}

// NewErrorRateBreaker fills zero values with the defaults
func NewErrorRateBreaker(batch int64, maxRate int) ErrorRateBreaker {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if maxRate <= 0 {
		maxRate = DefaultMaxErrorRate
	}
	return ErrorRateBreaker{BatchSize: batch, MaxRate: maxRate}
}

// Check implements dom.Guard
func (b ErrorRateBreaker) Check(stats *dom.ImportStatistics, _ int64) error {
	processed := stats.Processed()
	if processed == 0 || b.BatchSize <= 0 || processed%b.BatchSize != 0 {
		return nil
	}
	rate := float64(stats.Failed()) / float64(processed) * 100
	if rate > float64(b.MaxRate) {
		return perr.InvalidFeedf("Invalid merchant feed: threshold of max %d%% validation errors per batch exceeded.", b.MaxRate)
	}
	return nil
}

// SizeGuard aborts an import once more input than MaxBytes has been consumed
type SizeGuard struct {
	MaxBytes int64
}

// Check implements dom.Guard; a non positive ceiling disables the guard
func (g SizeGuard) Check(_ *dom.ImportStatistics, offset int64) error {
	if g.MaxBytes > 0 && offset > g.MaxBytes {
		return perr.InvalidFeedf("Max allowed file size of %d bytes exceeded.", g.MaxBytes)
	}
	return nil
}
