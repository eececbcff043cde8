package service

import (
	"context"
	"sync"
	"time"

	"merchantfeed/internal/platform/logger"

	dom "merchantfeed/internal/services/rowprocess/domain"
)

// DefaultErrorLogCap bounds how many rejected rows one import keeps
const DefaultErrorLogCap = 5000

// ErrorLog buffers rejected rows and writes them once at the end of the stream
type ErrorLog struct {
	w     dom.ErrorLogWriter
	limit int
	now   func() time.Time

	mu      sync.Mutex
	entries []dom.ErrorEntry
	dropped int
}

// NewErrorLog constructs a buffered error log; limit <= 0 uses the default
func NewErrorLog(w dom.ErrorLogWriter, limit int) *ErrorLog {
	if limit <= 0 {
		limit = DefaultErrorLogCap
	}
	return &ErrorLog{w: w, limit: limit, now: time.Now}
}

// Add implements dom.ErrorAggregator
func (l *ErrorLog) Add(stats *dom.ImportStatistics, merchantID string, o *dom.Offer, msg string, context map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) >= l.limit {
		l.dropped++
		return
	}
	e := dom.ErrorEntry{
		MerchantID: merchantID,
		Message:    msg,
		Context:    context,
		Offer:      o,
		At:         l.now().UTC(),
	}
	if stats != nil {
		e.StatsID = stats.ID
	}
	if o != nil {
		e.OfferID = o.ID
		e.Line = o.Line
	}
	l.entries = append(l.entries, e)
}

// Save implements dom.ErrorAggregator; the buffer is cleared only on success
func (l *ErrorLog) Save(ctx context.Context) error {
	l.mu.Lock()
	entries := l.entries
	dropped := l.dropped
	l.mu.Unlock()

	if dropped > 0 {
		logger.C(ctx).Warn().Int("dropped", dropped).Int("kept", len(entries)).Msg("import error log capped")
	}
	if len(entries) == 0 {
		return nil
	}
	if err := l.w.SaveErrors(ctx, entries); err != nil {
		return err
	}

	l.mu.Lock()
	l.entries = l.entries[len(entries):]
	l.mu.Unlock()
	return nil
}

// Len returns the number of buffered entries
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
