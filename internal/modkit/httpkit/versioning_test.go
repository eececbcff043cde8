package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "merchantfeed/internal/platform/net/http"
)

func TestMountAPI(t *testing.T) {
	for _, version := range []string{"v1", "/v2/"} {
		m := chi.NewRouter()
		hit := ""
		mw := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Scoped", "1")
				next.ServeHTTP(w, r)
			})
		}
		MountAPI(phttp.AdaptChi(m), version, []func(http.Handler) http.Handler{mw}, func(api Router) {
			Get(api, "/feeds/ping", func(r *http.Request) (any, error) {
				hit = r.URL.Path
				return "pong", nil
			})
		})

		want := "/api/" + map[string]string{"v1": "v1", "/v2/": "v2"}[version] + "/feeds/ping"
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, want, nil))
		if rec.Code != http.StatusOK || hit != want || rec.Header().Get("X-Scoped") != "1" {
			t.Fatalf("%s: code=%d hit=%q", version, rec.Code, hit)
		}
	}
}

func TestMountAPIV1_NoMiddleware(t *testing.T) {
	m := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(m), nil, func(api Router) {
		Get(api, "/meta/health", func(*http.Request) (any, error) { return "ok", nil })
	})
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/meta/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
}
