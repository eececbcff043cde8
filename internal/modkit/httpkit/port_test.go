package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perrs "merchantfeed/internal/platform/errors"
)

func bearer(v string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if v != "" {
		req.Header.Set("Authorization", v)
	}
	return req
}

func TestStaticToken(t *testing.T) {
	if StaticToken("") != nil {
		t.Fatal("empty token should disable auth")
	}
	p := StaticToken("s3cret")

	cases := map[string]bool{
		"":                 false,
		"Basic s3cret":     false,
		"Bearer   ":        false,
		"Bearer nope":      false,
		"Bearer s3cret":    true,
		"  BEARER s3cret ": true,
	}
	for header, ok := range cases {
		caller, _, err := p.Parse(bearer(header))
		if ok && (err != nil || caller != "operator") {
			t.Errorf("%q: caller=%q err=%v", header, caller, err)
		}
		if !ok && !perrs.IsCode(err, perrs.ErrorCodeUnauthorized) {
			t.Errorf("%q: want unauthorized, got %v", header, err)
		}
	}
}

func TestPort_NilParser(t *testing.T) {
	var p Port
	if _, _, err := p.Parse(bearer("Bearer tok")); err == nil {
		t.Fatal("expected error when parser is nil")
	}
}

func TestPort_PassesMerchantScope(t *testing.T) {
	p := NewPortFunc(func(tok string) (string, string, error) {
		return "feed-bot", "m-" + tok, nil
	})
	caller, merchant, err := p.Parse(bearer("Bearer 7"))
	if err != nil || caller != "feed-bot" || merchant != "m-7" {
		t.Fatalf("caller=%q merchant=%q err=%v", caller, merchant, err)
	}
}
