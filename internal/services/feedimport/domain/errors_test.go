package domain

import (
	"errors"
	"strings"
	"testing"

	perr "merchantfeed/internal/platform/errors"
)

func TestTransportKindFromExitCode(t *testing.T) {
	for code := 1; code <= 8; code++ {
		k, ok := TransportKindFromExitCode(code)
		if !ok || int(k) != code {
			t.Fatalf("code %d: kind=%v ok=%v", code, k, ok)
		}
	}
	for _, code := range []int{0, 9, 10, -1} {
		if _, ok := TransportKindFromExitCode(code); ok {
			t.Fatalf("code %d should not map to a kind", code)
		}
	}
}

func TestNewTransportError_CodeAndUnwrap(t *testing.T) {
	err := NewTransportError(KindNetwork, "connection reset")
	if !perr.IsCode(err, perr.ErrorCodeTransport) {
		t.Fatalf("expected transport code, got %v", perr.CodeOf(err))
	}
	if !perr.Retryable(err) {
		t.Fatalf("transport errors must be retryable")
	}
	te, ok := AsTransport(err)
	if !ok || te.Kind != KindNetwork || te.ExitCode != 4 {
		t.Fatalf("AsTransport = %+v ok=%v", te, ok)
	}
	if ErrorKind(err) != "network_failure" {
		t.Fatalf("ErrorKind = %q", ErrorKind(err))
	}
}

func TestStageFailure_TextShape(t *testing.T) {
	sf := &StageFailure{Stage: StageFetch, Command: "/usr/bin/wget -q -O - 'http://x'", ExitCode: 4, Stderr: "unable to resolve host"}
	msg := sf.Error()
	if !strings.Contains(msg, "/usr/bin/wget ") || !strings.Contains(msg, "Exit-Code: 4 ") {
		t.Fatalf("unexpected diagnostic %q", msg)
	}
	wrapped := perr.Wrap(sf, perr.ErrorCodeExecution, "stage fetch failed")
	got, ok := AsStageFailure(wrapped)
	if !ok || got.ExitCode != 4 {
		t.Fatalf("AsStageFailure through wrap failed")
	}
	if ErrorKind(wrapped) != "execution" {
		t.Fatalf("ErrorKind = %q", ErrorKind(wrapped))
	}
}

func TestErrorKind_Labels(t *testing.T) {
	cases := map[string]error{
		"configuration": perr.Configf("no feed"),
		"invalid_feed":  perr.InvalidFeedf("too big"),
		"internal":      errors.New("boom"),
		"":              nil,
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestVariantAndAccepts(t *testing.T) {
	if v, ok := ParseVariant("unmatched"); !ok || v != VariantUnmatchedReprocess {
		t.Fatalf("ParseVariant unmatched = %v %v", v, ok)
	}
	if _, ok := ParseVariant("other"); ok {
		t.Fatalf("unexpected variant")
	}
	if Variant("x").Valid() {
		t.Fatalf("unknown variant reported valid")
	}

	def := CommandDefinition{Command: "wget"}
	if !def.Accepts(0) || def.Accepts(1) {
		t.Fatalf("default success set must be {0}")
	}
	tolerant := CommandDefinition{Command: "zgrep", ExitCodes: []int{0, 1, 2}}
	if !tolerant.Accepts(2) || tolerant.Accepts(3) {
		t.Fatalf("tolerant success set mismatch")
	}
}
