// Package module wires the feed import planner, worker and enqueue service and exposes their ports
package module

import (
	"merchantfeed/internal/adapters/feed/httpprobe"
	"merchantfeed/internal/adapters/pipeexec"
	"merchantfeed/internal/modkit"
	"merchantfeed/internal/modkit/httpkit"
	"merchantfeed/internal/services/feedimport/guardrails"
	"merchantfeed/internal/services/feedimport/service"
)

// Module defines the feed import module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the feed import module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	opts := merge(FromConfig(deps.Cfg), overrides)

	probe := httpprobe.New(httpprobe.Options{
		Timeout:    opts.ProbeTimeout,
		RatePerSec: opts.ProbeRPS,
		Burst:      opts.ProbeBurst,
		Cache:      deps.RDS,
		CacheTTL:   opts.ProbeCacheTTL,
	})
	exec := pipeexec.New(pipeexec.Options{Dir: opts.WorkDir})
	planner := service.NewPlanner(service.PlannerConfig{
		BackupRoot:  opts.BackupRoot,
		ReadTimeout: opts.ReadTimeout,
		Catalog:     opts.Catalog,
	}, probe, exec)

	svc := service.New(deps, service.Config{
		Concurrency:    opts.WorkerConcurrency,
		QueueTakeBatch: opts.QueueTakeBatch,
		PollInterval:   opts.PollInterval,
		LeaseTTL:       opts.LeaseTTL,
		MaxAttempts:    opts.MaxAttempts,
		Timeouts: guardrails.Timeouts{
			Import: opts.ImportTimeout,
			Probe:  opts.ProbeTimeout,
		},
	}, planner, probe)

	return &Module{
		deps: deps,
		opts: opts,
		ports: Ports{
			Worker:   svc,
			Enqueuer: svc,
			Importer: planner,
			Service:  svc,
		},
	}
}

// merge applies non zero overrides on top of the configured options
func merge(opts, o Options) Options {
	if o.BackupRoot != "" {
		opts.BackupRoot = o.BackupRoot
	}
	if o.ReadTimeout != 0 {
		opts.ReadTimeout = o.ReadTimeout
	}
	if o.ProbeTimeout != 0 {
		opts.ProbeTimeout = o.ProbeTimeout
	}
	if o.ProbeRPS != 0 {
		opts.ProbeRPS = o.ProbeRPS
	}
	if o.ProbeBurst != 0 {
		opts.ProbeBurst = o.ProbeBurst
	}
	if o.ProbeCacheTTL != 0 {
		opts.ProbeCacheTTL = o.ProbeCacheTTL
	}
	if o.ImportTimeout != 0 {
		opts.ImportTimeout = o.ImportTimeout
	}
	if o.LeaseTTL != 0 {
		opts.LeaseTTL = o.LeaseTTL
	}
	if o.WorkerConcurrency != 0 {
		opts.WorkerConcurrency = o.WorkerConcurrency
	}
	if o.QueueTakeBatch != 0 {
		opts.QueueTakeBatch = o.QueueTakeBatch
	}
	if o.PollInterval != 0 {
		opts.PollInterval = o.PollInterval
	}
	if o.MaxAttempts != 0 {
		opts.MaxAttempts = o.MaxAttempts
	}
	if o.WorkDir != "" {
		opts.WorkDir = o.WorkDir
	}
	if o.Catalog != (service.Catalog{}) {
		opts.Catalog = o.Catalog
	}
	return opts
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "feedimport" }

// Prefix returns the module config prefix
func (m *Module) Prefix() string { return "CORE_FEEDIMPORT_" }

// Options returns the effective options
func (m *Module) Options() Options { return m.opts }

// MountRoutes returns no HTTP routes; the imports API mounts on top of Ports
func (m *Module) MountRoutes(_ httpkit.Router) {}
