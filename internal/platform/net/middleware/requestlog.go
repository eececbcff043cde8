package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"merchantfeed/internal/platform/logger"
)

// RequestLog writes one line per request through the request scoped logger
// 5xx answers log at error and requests slower than slow at warn; slow <= 0 never warns
func RequestLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			took := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			evt := log.Info()
			if status >= http.StatusInternalServerError {
				evt = log.Error()
			} else if slow > 0 && took >= slow {
				evt = log.Warn()
			}
			evt.Str("method", r.Method).
				Str("route", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Int64("took_ms", took.Milliseconds()).
				Msg("http request")
		})
	}
}
