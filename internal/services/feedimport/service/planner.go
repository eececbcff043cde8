package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"merchantfeed/internal/platform/logger"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"

	"github.com/kballard/go-shellquote"
)

// PlannerConfig controls plan construction
type PlannerConfig struct {
	BackupRoot  string
	ReadTimeout int
	Catalog     Catalog
}

// Planner builds stage plans for feed imports and runs them through an executor
type Planner struct {
	cfg        PlannerConfig
	catalog    Catalog
	probe      dom.TransportProbe
	exec       dom.Executor
	classifier ExitStatusClassifier
}

// NewPlanner constructs a planner; probe may be nil, which reads as never gzip encoded
func NewPlanner(cfg PlannerConfig, probe dom.TransportProbe, exec dom.Executor) *Planner {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30
	}
	return &Planner{
		cfg:     cfg,
		catalog: cfg.Catalog.merged(),
		probe:   probe,
		exec:    exec,
	}
}

// Import plans and executes one feed import
// fetch failures come back as transport errors so the caller can reschedule
func (p *Planner) Import(ctx context.Context, req *dom.FeedImportRequest) error {
	log := logger.C(ctx).With().
		Str("merchant_id", req.MerchantID).
		Str("variant", string(req.Variant)).
		Logger()

	plan, params, err := p.Plan(ctx, req)
	if err != nil {
		p.logFailure(ctx, req, err)
		return err
	}

	log.Info().Msg("started feed import")
	start := time.Now()

	if err := p.exec.Execute(ctx, plan, params); err != nil {
		err = p.reclassify(err)
		p.logFailure(ctx, req, err)
		return err
	}

	req.SuccessfullyProcessed = true
	log.Info().
		Float64("duration", math.Round(time.Since(start).Seconds()*100)/100).
		Msg("finished feed import")
	return nil
}

// Plan builds the stage plan and parameters for req without running anything
// the only side effect is the transport probe when compression cannot be resolved statically
func (p *Planner) Plan(ctx context.Context, req *dom.FeedImportRequest) (dom.StagePlan, dom.ParameterSet, error) {
	if req == nil || req.Feed == nil {
		return dom.StagePlan{}, nil, perr.Configf("no merchant feed config in import request")
	}
	if !req.Variant.Valid() {
		return dom.StagePlan{}, nil, perr.Configf("unknown import variant %q", req.Variant)
	}
	feed := req.Feed
	isXML := feed.Format == dom.FormatXML

	extract, err := p.extractCommand(ctx, req)
	if err != nil {
		return dom.StagePlan{}, nil, err
	}
	extractCmds := []dom.CommandDefinition{extract}

	var process string
	switch req.Variant {
	case dom.VariantPrimaryImport:
		path := BackupPath(p.cfg.BackupRoot, req.MerchantID, feed.Format)
		backup := strict(p.catalog.Backup)
		backup.Output = path
		extractCmds = append(extractCmds, backup)
		process = p.catalog.Process
	case dom.VariantUnmatchedReprocess:
		process = p.catalog.ProcessUnmatched
	}

	preprocess := p.catalog.BlankLines
	if isXML {
		preprocess = p.catalog.XML2CSV
	}

	plan := dom.StagePlan{Groups: []dom.StageGroup{
		{Name: dom.StageFetch, Commands: []dom.CommandDefinition{strict(p.catalog.Fetch)}},
		{Name: dom.StageExtract, Commands: extractCmds},
		{Name: dom.StagePreprocess, Commands: []dom.CommandDefinition{strict(preprocess)}},
		{Name: dom.StageProcess, Commands: []dom.CommandDefinition{strict(process)}},
	}}

	return plan, p.params(req), nil
}

// extractCommand resolves declared compression first and probes the transport only as a fallback
func (p *Planner) extractCommand(ctx context.Context, req *dom.FeedImportRequest) (dom.CommandDefinition, error) {
	if cmd, ok := p.catalog.extractFor(ResolveCompression(req.Feed, req.URL)); ok {
		return strict(cmd), nil
	}
	if p.probe != nil {
		gz, err := p.probe.IsGzipEncoded(ctx, req.URL)
		if err != nil {
			return dom.CommandDefinition{}, err
		}
		if gz {
			return strict(p.catalog.Gzip), nil
		}
	}
	// zgrep exits 1 on no match and 2 on plain input oddities, both are fine here
	return dom.CommandDefinition{Command: p.catalog.Passthrough, ExitCodes: []int{0, 1, 2}}, nil
}

func (p *Planner) params(req *dom.FeedImportRequest) dom.ParameterSet {
	ps := dom.ParameterSet{
		dom.ParamMerchantID:    req.MerchantID,
		dom.ParamReadTimeout:   strconv.Itoa(p.cfg.ReadTimeout),
		dom.ParamImportStatsID: statsID(req.Stats),
		dom.ParamURL:           shellquote.Join(req.URL),
		dom.ParamUsername:      shellquote.Join(req.Feed.Username),
		dom.ParamPassword:      shellquote.Join(req.Feed.Password),
	}
	if req.Feed.Format == dom.FormatXML {
		ps[dom.ParamXMLEntity] = req.Feed.XMLEntity
		ps[dom.ParamRowsLimitCount] = "0"
	}
	return ps
}

// reclassify turns fetch failures into transport errors and guard aborts of the
// process stage into invalid feed errors
// structured stage failures are preferred, the diagnostic text is the fallback for
// executors that only hand back an error message
func (p *Planner) reclassify(err error) error {
	if sf, ok := dom.AsStageFailure(err); ok {
		if sf.Stage == dom.StageProcess && sf.ExitCode == dom.ExitInvalidFeed {
			return perr.Wrap(sf, perr.ErrorCodeInvalidFeed, "feed rejected during row processing")
		}
		if sf.Stage != dom.StageFetch {
			return err
		}
		if kind, ok := dom.TransportKindFromExitCode(sf.ExitCode); ok {
			return dom.NewTransportError(kind, sf.Error())
		}
		return err
	}
	msg := err.Error()
	if !p.classifier.CanClassify(msg) {
		return err
	}
	kind, cerr := p.classifier.Classify(msg)
	if cerr != nil {
		return cerr
	}
	return dom.NewTransportError(kind, msg)
}

func (p *Planner) logFailure(ctx context.Context, req *dom.FeedImportRequest, err error) {
	id, kind := "", "none"
	if req != nil && req.Stats != nil {
		id = statsID(req.Stats)
		kind = req.Stats.Kind
	}
	merchant := ""
	if req != nil {
		merchant = req.MerchantID
	}
	logger.C(ctx).Error().
		Str("merchant_id", merchant).
		Str("message", err.Error()).
		Str("import_stats_id", id).
		Str("import_stats_kind", kind).
		Str("kind", dom.ErrorKind(err)).
		Msg("feed import failed")
}

// BackupPath is where the raw feed copy of a primary import is written
func BackupPath(root, merchantID string, f dom.Format) string {
	ext := "csv"
	if f == dom.FormatXML {
		ext = "xml"
	}
	return fmt.Sprintf("%s/%s.%s.gz", strings.TrimRight(root, "/"), merchantID, ext)
}

func statsID(ref *dom.StatsRef) string {
	if ref == nil {
		return ""
	}
	return strconv.FormatInt(ref.ID, 10)
}
