// Package modkit provides module wiring and core deps
package modkit

import (
	"merchantfeed/internal/modkit/repokit"
	"merchantfeed/internal/platform/config"
	"merchantfeed/internal/platform/logger"
	"merchantfeed/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
	RDS store.KV
}

// FromStore fills the backend seams from an opened store
func FromStore(s *store.Store, cfg config.Conf) Deps {
	if s == nil {
		return Deps{Cfg: cfg}
	}
	return Deps{Log: s.Log, Cfg: cfg, PG: s.PG, CH: s.CH, RDS: s.RDS}
}
