package service

import (
	"context"
	"errors"

	dom "merchantfeed/internal/services/rowprocess/domain"
)

type step struct {
	res dom.RowResult
	err error
}

// sliceSource yields the given steps then EOF forever
type sliceSource struct {
	steps  []step
	i      int
	offset int64
	per    int64
	pulls  int
}

func (s *sliceSource) Next(context.Context) (dom.RowResult, error) {
	s.pulls++
	if s.i >= len(s.steps) {
		return dom.RowResult{EOF: true}, nil
	}
	st := s.steps[s.i]
	s.i++
	s.offset += s.per
	return st.res, st.err
}

func (s *sliceSource) Offset() int64 { return s.offset }

func validRow(id string) step {
	return step{res: dom.RowResult{Valid: true, Offer: &dom.Offer{ID: id}}}
}

type scriptedExporter struct {
	outcomes map[string]dom.RowOutcome
	errs     map[string]error
	seen     []string
}

func (e *scriptedExporter) Export(_ context.Context, _ string, o *dom.Offer) (dom.RowOutcome, error) {
	e.seen = append(e.seen, o.ID)
	if err, ok := e.errs[o.ID]; ok {
		return dom.RowOutcome{}, err
	}
	if out, ok := e.outcomes[o.ID]; ok {
		return out, nil
	}
	return dom.Exported(), nil
}

type recAggregator struct {
	added []string
	saves int
	err   error
}

func (a *recAggregator) Add(_ *dom.ImportStatistics, _ string, o *dom.Offer, msg string, _ map[string]any) {
	id := ""
	if o != nil {
		id = o.ID
	}
	a.added = append(a.added, id+":"+msg)
}

func (a *recAggregator) Save(context.Context) error {
	a.saves++
	return a.err
}

type recReporter struct {
	reports int
	flagAt  bool
}

func (r *recReporter) ReportCriticalErrors(_ context.Context, s *dom.ImportStatistics) error {
	r.reports++
	r.flagAt = s.SuccessfullyProcessed
	return nil
}

type recAbort struct{ errs []error }

func (r *recAbort) DetectedProcessingError(_ context.Context, _ *dom.ImportStatistics, err error) {
	r.errs = append(r.errs, err)
}

type guardFunc func(*dom.ImportStatistics, int64) error

func (g guardFunc) Check(s *dom.ImportStatistics, off int64) error { return g(s, off) }

var errBoom = errors.New("boom")
