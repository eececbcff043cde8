package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "merchantfeed/internal/platform/net/http"
	"merchantfeed/internal/platform/net/middleware"
)

// StackOptions tunes the shared API middleware
type StackOptions struct {
	CORSOrigins []string
	SlowRequest time.Duration
	Timeout     time.Duration
}

// CommonStack returns the middleware every versioned route runs behind
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.SlowRequest <= 0 {
		o.SlowRequest = 500 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recover(phttp.RespondError),
		middleware.NoCache,
		middleware.RequestLog(o.SlowRequest),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes,
		middleware.Timeout(o.Timeout),
	}
}

// Auth wires the auth middleware to the envelope error writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.RespondError)
}
