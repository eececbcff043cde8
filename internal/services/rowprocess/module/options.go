package module

import (
	"merchantfeed/internal/platform/config"
	"merchantfeed/internal/services/rowprocess/service"
)

// Options controls row stream processing
type Options struct {
	BatchSize     int64
	MaxErrorRate  int
	MaxFileSize   int64
	Delimiter     string
	Enclosure     string
	SkipInvalid   bool
	ErrorLogLimit int
	// CHSink mirrors finished imports into ClickHouse when a ClickHouse seam is present
	CHSink bool
}

// FromConfig reads with CORE_ROWPROCESS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_ROWPROCESS_")
	return Options{
		BatchSize:     c.MayInt64("BATCH_SIZE", service.DefaultBatchSize),
		MaxErrorRate:  c.MayInt("MAX_ERROR_RATE", service.DefaultMaxErrorRate),
		MaxFileSize:   c.MayInt64("MAX_FILE_SIZE", service.DefaultMaxFileSize),
		Delimiter:     c.MayString("DELIMITER", ","),
		Enclosure:     c.MayString("ENCLOSURE", `"`),
		SkipInvalid:   c.MayBool("SKIP_INVALID", true),
		ErrorLogLimit: c.MayInt("ERROR_LOG_LIMIT", service.DefaultErrorLogCap),
		CHSink:        c.MayBool("CH_SINK", true),
	}
}
