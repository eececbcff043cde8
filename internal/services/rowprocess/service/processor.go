// Package service implements the row stream processor, its guards and collaborators
package service

import (
	"context"

	"merchantfeed/internal/platform/logger"

	dom "merchantfeed/internal/services/rowprocess/domain"
)

// Processor drives a row stream through guards and export
// rows are handled strictly in source order by a single goroutine
type Processor struct {
	exporter dom.Exporter
	errs     dom.ErrorAggregator
	reporter dom.StatsReporter
	abort    dom.AbortHandler
	guards   []dom.Guard
}

// NewProcessor wires a processor; abort may be nil
func NewProcessor(exp dom.Exporter, errs dom.ErrorAggregator, rep dom.StatsReporter, abort dom.AbortHandler, guards ...dom.Guard) *Processor {
	return &Processor{
		exporter: exp,
		errs:     errs,
		reporter: rep,
		abort:    abort,
		guards:   guards,
	}
}

// Process consumes src until end of input or a non row failure
// a rejected row never stops the stream; any other failure does and ends up in the summary
// the error log and statistics are flushed in both cases
func (p *Processor) Process(ctx context.Context, stats *dom.ImportStatistics, src dom.RowSource) dom.Summary {
	log := logger.C(ctx).With().
		Str("merchant_id", stats.MerchantID).
		Int64("import_stats_id", stats.ID).
		Logger()

	sum := dom.Summary{}
	if err := p.consume(ctx, stats, src); err != nil {
		sum.Aborted = true
		sum.Err = err
		stats.Critical = append(stats.Critical, err.Error())
		if p.abort != nil {
			p.abort.DetectedProcessingError(ctx, stats, err)
		}
		log.Error().Err(err).
			Int64("processed", stats.Processed()).
			Int64("failed", stats.Failed()).
			Int64("offset", src.Offset()).
			Msg("row stream aborted")
	} else {
		stats.SuccessfullyProcessed = true
	}

	if err := p.errs.Save(ctx); err != nil {
		log.Error().Err(err).Msg("save import error log failed")
		if sum.Err == nil {
			sum.Err = err
		}
	}
	if err := p.reporter.ReportCriticalErrors(ctx, stats); err != nil {
		log.Error().Err(err).Msg("report import statistics failed")
		if sum.Err == nil {
			sum.Err = err
		}
	}

	sum.Processed = stats.Processed()
	sum.Failed = stats.Failed()
	if !sum.Aborted {
		log.Info().
			Int64("processed", sum.Processed).
			Int64("failed", sum.Failed).
			Msg("row stream finished")
	}
	return sum
}

func (p *Processor) consume(ctx context.Context, stats *dom.ImportStatistics, src dom.RowSource) error {
	for {
		res, err := src.Next(ctx)
		if err != nil {
			return err
		}
		if res.EOF {
			return nil
		}
		stats.AddProcessed()

		for _, g := range p.guards {
			if err := g.Check(stats, src.Offset()); err != nil {
				return err
			}
		}

		outcome, err := p.export(ctx, stats, res)
		if err != nil {
			return err
		}
		if outcome.Failed() {
			stats.AddFailed()
			p.errs.Add(stats, stats.MerchantID, res.Offer, outcome.Message, outcome.Context)
		}
	}
}

func (p *Processor) export(ctx context.Context, stats *dom.ImportStatistics, res dom.RowResult) (dom.RowOutcome, error) {
	if !res.Valid || res.Offer == nil {
		msg := res.Problem
		if msg == "" {
			msg = "invalid row"
		}
		line := 0
		if res.Offer != nil {
			line = res.Offer.Line
		}
		return dom.Rejected(msg, map[string]any{"line": line}), nil
	}
	return p.exporter.Export(ctx, stats.MerchantID, res.Offer)
}
