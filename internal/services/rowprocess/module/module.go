// Package module wires the row stream processor and exposes its runner
package module

import (
	"merchantfeed/internal/modkit"
	"merchantfeed/internal/modkit/httpkit"
	"merchantfeed/internal/services/rowprocess/domain"
	"merchantfeed/internal/services/rowprocess/repo"
	"merchantfeed/internal/services/rowprocess/service"
)

// Ports holds the ports exposed by the row process module
type Ports struct {
	Runner *service.Runner
}

// Module defines the row process module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the row process module
// skipInvalid cannot be switched off through overrides; use the env switch
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.BatchSize != 0 {
		opts.BatchSize = overrides.BatchSize
	}
	if overrides.MaxErrorRate != 0 {
		opts.MaxErrorRate = overrides.MaxErrorRate
	}
	if overrides.MaxFileSize != 0 {
		opts.MaxFileSize = overrides.MaxFileSize
	}
	if overrides.Delimiter != "" {
		opts.Delimiter = overrides.Delimiter
	}
	if overrides.Enclosure != "" {
		opts.Enclosure = overrides.Enclosure
	}
	if overrides.ErrorLogLimit != 0 {
		opts.ErrorLogLimit = overrides.ErrorLogLimit
	}

	var runs domain.RunSink
	if opts.CHSink && deps.CH != nil {
		runs = repo.NewCHRuns(deps.CH)
	}

	runner := service.NewRunner(service.NewStorage(deps.PG, repo.NewPG()), runs, service.Config{
		BatchSize:     opts.BatchSize,
		MaxErrorRate:  opts.MaxErrorRate,
		MaxFileSize:   opts.MaxFileSize,
		Delimiter:     opts.Delimiter,
		Enclosure:     opts.Enclosure,
		SkipInvalid:   opts.SkipInvalid,
		ErrorLogLimit: opts.ErrorLogLimit,
	})
	return &Module{deps: deps, opts: opts, ports: Ports{Runner: runner}}
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "rowprocess" }

// Prefix returns the module config prefix
func (m *Module) Prefix() string { return "CORE_ROWPROCESS_" }

// Options returns the effective options
func (m *Module) Options() Options { return m.opts }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
