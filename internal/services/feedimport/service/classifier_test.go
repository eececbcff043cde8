package service

import (
	"fmt"
	"testing"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"
)

func TestClassifier_CanClassify(t *testing.T) {
	var c ExitStatusClassifier
	cases := []struct {
		msg  string
		want bool
	}{
		{"/usr/bin/wget foo bar Exit-Code: 4 baz", true},
		{"/usr/local/bin/wget -q 'http://x' Exit-Code: 8 ", true},
		{"wget foo Exit-Code: 4 baz", false},          // no path
		{"/usr/bin/curl foo Exit-Code: 4 baz", false}, // other tool
		{"/usr/bin/wget foo Exit-Code: x", false},     // no digit
		{"/usr/bin/wget foo exit code 4", false},      // other shape
		{"pipeline stage process failed: boom", false},
	}
	for _, tc := range cases {
		if got := c.CanClassify(tc.msg); got != tc.want {
			t.Fatalf("CanClassify(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestClassifier_AllKnownDigits(t *testing.T) {
	var c ExitStatusClassifier
	want := map[int]dom.TransportKind{
		1: dom.KindGeneric,
		2: dom.KindParse,
		3: dom.KindFileIO,
		4: dom.KindNetwork,
		5: dom.KindTLS,
		6: dom.KindAuth,
		7: dom.KindProtocol,
		8: dom.KindServer,
	}
	for code, kind := range want {
		msg := fmt.Sprintf("/usr/bin/wget foo bar Exit-Code: %d baz", code)
		got, err := c.Classify(msg)
		if err != nil {
			t.Fatalf("code %d: unexpected err %v", code, err)
		}
		if got != kind {
			t.Fatalf("code %d: got %v want %v", code, got, kind)
		}
	}
}

func TestClassifier_UndefinedDigitIsInternal(t *testing.T) {
	var c ExitStatusClassifier
	for _, d := range []int{0, 9} {
		msg := fmt.Sprintf("/usr/bin/wget foo Exit-Code: %d", d)
		if !c.CanClassify(msg) {
			t.Fatalf("digit %d should match the shape", d)
		}
		_, err := c.Classify(msg)
		if err == nil {
			t.Fatalf("digit %d: expected error", d)
		}
		if perr.CodeOf(err) != perr.ErrorCodeUnknown {
			t.Fatalf("digit %d: expected internal code, got %v", d, perr.CodeOf(err))
		}
	}
}

func TestClassifier_MultiDigitReadsFirstDigit(t *testing.T) {
	var c ExitStatusClassifier
	// single digit capture: "Exit-Code: 14" reads as 1
	got, err := c.Classify("/usr/bin/wget foo Exit-Code: 14 bar")
	if err != nil || got != dom.KindGeneric {
		t.Fatalf("got %v err %v", got, err)
	}
}
