// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/platform/net/middleware"
)

// TokenFunc resolves a bearer token to a caller id and an optional merchant scope
type TokenFunc func(token string) (callerID string, merchantID string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// StaticToken accepts exactly one shared operator token; an empty token disables auth
func StaticToken(token string) middleware.AuthPort {
	if token == "" {
		return nil
	}
	want := []byte(token)
	return NewPortFunc(func(got string) (string, string, error) {
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return "", "", perrs.Unauthorizedf("token mismatch")
		}
		return "operator", "", nil
	})
}

// Parse extracts the bearer token and hands it to the parser
// any failure comes back as unauthorized
func (p *Port) Parse(r *http.Request) (string, string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", "", perrs.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	caller, merchant, err := p.parse(raw)
	if err != nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	return caller, merchant, nil
}
