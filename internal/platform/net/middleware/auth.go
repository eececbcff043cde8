package middleware

import (
	"net/http"

	pnet "merchantfeed/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	// Parse returns the caller id and, for merchant scoped credentials, the merchant id
	Parse(r *http.Request) (callerID string, merchantID string, err error)
}

// Auth rejects requests the port cannot resolve and passes everything through when p is nil
func Auth(p AuthPort, fail ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			_, merchantID, err := p.Parse(r)
			if err != nil {
				fail(w, r, err)
				return
			}
			ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()), merchantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
