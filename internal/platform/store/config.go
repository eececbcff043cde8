package store

import (
	"time"

	"merchantfeed/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot retry knobs
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	// Role is reported to the server as client info (api, worker, process)
	Role string
}

// RedisConfig configures redis connectivity
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// FromConfig reads CORE_PG_*, CORE_CH_* and CORE_REDIS_* from root
// postgres is on unless CORE_PG_ENABLED=false; the other backends are opt in
func FromConfig(root config.Conf, role string) Config {
	pg := root.Prefix("CORE_PG_")
	ch := root.Prefix("CORE_CH_")
	rds := root.Prefix("CORE_REDIS_")

	cfg := Config{
		AppName: "merchantfeed-" + role,
		PG: PGConfig{
			Enabled:     pg.MayBool("ENABLED", true),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
		CH: CHConfig{
			Enabled: ch.MayBool("ENABLED", false),
			Role:    role,
		},
		RDS: RedisConfig{
			Enabled:  rds.MayBool("ENABLED", false),
			Password: rds.MayString("PASSWORD", ""),
			DB:       rds.MayInt("DB", 0),
		},
	}
	if cfg.PG.Enabled {
		cfg.PG.URL = pg.MustString("URL")
	}
	if cfg.CH.Enabled {
		cfg.CH.URL = ch.MustString("URL")
	}
	if cfg.RDS.Enabled {
		cfg.RDS.Addr = rds.MustString("ADDR")
	}
	return cfg
}
