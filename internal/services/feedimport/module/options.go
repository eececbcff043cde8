package module

import (
	"time"

	"merchantfeed/internal/platform/config"
	"merchantfeed/internal/services/feedimport/service"
)

// Options controls feed import planning, probing and the worker
type Options struct {
	BackupRoot  string
	ReadTimeout int

	ProbeTimeout  time.Duration
	ProbeRPS      float64
	ProbeBurst    int
	ProbeCacheTTL time.Duration

	ImportTimeout     time.Duration
	LeaseTTL          time.Duration
	WorkerConcurrency int
	QueueTakeBatch    int
	PollInterval      time.Duration
	MaxAttempts       int

	// WorkDir is where pipeline commands run, the process cwd when empty
	WorkDir string

	Catalog service.Catalog
}

// FromConfig reads with CORE_FEEDIMPORT_ prefix
// blank command templates fall back to the default catalog
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_FEEDIMPORT_")
	return Options{
		BackupRoot:  c.MayString("BACKUP_ROOT", "/var/lib/merchantfeed/backup"),
		ReadTimeout: c.MayInt("READ_TIMEOUT", 30),

		ProbeTimeout:  c.MayDuration("PROBE_TIMEOUT", 10*time.Second),
		ProbeRPS:      c.MayFloat64("PROBE_RPS", 5),
		ProbeBurst:    c.MayInt("PROBE_BURST", 5),
		ProbeCacheTTL: c.MayDuration("PROBE_CACHE_TTL", 15*time.Minute),

		ImportTimeout:     c.MayDuration("IMPORT_TIMEOUT", 2*time.Hour),
		LeaseTTL:          c.MayDuration("LEASE_TTL", 2*time.Hour),
		WorkerConcurrency: c.MayInt("WORKER_CONCURRENCY", 2),
		QueueTakeBatch:    c.MayInt("QUEUE_TAKE_BATCH", 4),
		PollInterval:      c.MayDuration("POLL_INTERVAL", 2*time.Second),
		MaxAttempts:       c.MayInt("MAX_ATTEMPTS", 5),

		WorkDir: c.MayString("WORK_DIR", ""),

		Catalog: service.Catalog{
			Fetch:            c.MayString("CMD_FETCH", ""),
			TarGz:            c.MayString("CMD_TAR_GZ", ""),
			Zip:              c.MayString("CMD_ZIP", ""),
			Gzip:             c.MayString("CMD_GZIP", ""),
			Passthrough:      c.MayString("CMD_PASSTHROUGH", ""),
			Backup:           c.MayString("CMD_BACKUP", ""),
			XML2CSV:          c.MayString("CMD_XML2CSV", ""),
			BlankLines:       c.MayString("CMD_BLANKLINES", ""),
			Process:          c.MayString("CMD_PROCESS", ""),
			ProcessUnmatched: c.MayString("CMD_PROCESS_UNMATCHED", ""),
		},
	}
}
