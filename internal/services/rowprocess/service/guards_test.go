package service

import (
	"testing"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

func statsAt(processed, failed int64) *dom.ImportStatistics {
	s := &dom.ImportStatistics{}
	s.Restore(processed, failed)
	return s
}

func TestErrorRateBreaker_BatchBoundary(t *testing.T) {
	b := NewErrorRateBreaker(0, 0)
	if b.BatchSize != 2000 || b.MaxRate != 90 {
		t.Fatalf("defaults = %+v", b)
	}

	err := b.Check(statsAt(2000, 1801), 0)
	if !perr.IsCode(err, perr.ErrorCodeInvalidFeed) {
		t.Fatalf("expected invalid feed at boundary, got %v", err)
	}
	if err.Error() != "Invalid merchant feed: threshold of max 90% validation errors per batch exceeded." {
		t.Fatalf("message = %q", err.Error())
	}

	if err := b.Check(statsAt(1999, 1801), 0); err != nil {
		t.Fatalf("must not fire between boundaries: %v", err)
	}
}

func TestErrorRateBreaker_EdgeCases(t *testing.T) {
	b := ErrorRateBreaker{BatchSize: 10, MaxRate: 50}
	cases := []struct {
		processed, failed int64
		fire              bool
	}{
		{0, 0, false},
		{0, 5, false},
		{10, 5, false}, // exactly at threshold
		{10, 6, true},
		{15, 15, false}, // off boundary
		{20, 11, true},
		{20, 10, false},
	}
	for _, tc := range cases {
		err := b.Check(statsAt(tc.processed, tc.failed), 0)
		if (err != nil) != tc.fire {
			t.Fatalf("processed=%d failed=%d: err=%v want fire=%v", tc.processed, tc.failed, err, tc.fire)
		}
	}
}

func TestSizeGuard(t *testing.T) {
	g := SizeGuard{MaxBytes: 100}
	if err := g.Check(nil, 100); err != nil {
		t.Fatalf("at ceiling: %v", err)
	}
	err := g.Check(nil, 101)
	if !perr.IsCode(err, perr.ErrorCodeInvalidFeed) {
		t.Fatalf("expected invalid feed, got %v", err)
	}
	if err.Error() != "Max allowed file size of 100 bytes exceeded." {
		t.Fatalf("message = %q", err.Error())
	}
	if err := (SizeGuard{}).Check(nil, 1<<40); err != nil {
		t.Fatalf("zero ceiling disables guard: %v", err)
	}
}
