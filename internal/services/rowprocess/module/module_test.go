package module

import (
	"testing"

	"merchantfeed/internal/modkit"
	"merchantfeed/internal/platform/config"
)

func TestFromConfigDefaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.BatchSize != 2000 || o.MaxErrorRate != 90 || o.MaxFileSize != 1<<30 {
		t.Fatalf("opts = %+v", o)
	}
	if o.Delimiter != "," || o.Enclosure != `"` || !o.SkipInvalid || !o.CHSink {
		t.Fatalf("opts = %+v", o)
	}
}

func TestFromConfigEnv(t *testing.T) {
	t.Setenv("CORE_ROWPROCESS_MAX_ERROR_RATE", "50")
	t.Setenv("CORE_ROWPROCESS_SKIP_INVALID", "false")
	o := FromConfig(config.New())
	if o.MaxErrorRate != 50 || o.SkipInvalid {
		t.Fatalf("opts = %+v", o)
	}
}

func TestNewWithoutClickhouse(t *testing.T) {
	m := New(modkit.Deps{}, Options{BatchSize: 10, Delimiter: ";"})
	if m.Options().BatchSize != 10 || m.Options().Delimiter != ";" || m.Options().MaxErrorRate != 90 {
		t.Fatalf("opts = %+v", m.Options())
	}
	if p, ok := m.Ports().(Ports); !ok || p.Runner == nil {
		t.Fatalf("ports = %+v", m.Ports())
	}
}
