package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	perr "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/platform/logger"
)

// ErrorWriter renders err as the response
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Recover turns a handler panic into a logged ErrorCodePanic written through fail
// http.ErrAbortHandler is re-raised so net/http can drop the connection
func Recover(fail ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}
				logger.C(r.Context()).Error().
					Interface("panic", v).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				fail(w, r, perr.PanicErrf("internal error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
