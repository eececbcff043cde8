package httpprobe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"merchantfeed/internal/platform/store/rds"

	perr "merchantfeed/internal/platform/errors"

	"github.com/alicebob/miniredis/v2"
)

type failRT struct{ t *testing.T }

func (f failRT) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Fatalf("no network call expected")
	return nil, errors.New("unreachable")
}

func server(t *testing.T, hits *atomic.Int32, fn http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if got := r.Header.Get("Accept-Encoding"); got != "gzip" {
			t.Errorf("accept-encoding = %q", got)
		}
		fn(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsGzipEncoded_Responses(t *testing.T) {
	cases := []struct {
		name string
		fn   http.HandlerFunc
		want bool
	}{
		{"gzip octet stream", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusOK)
		}, true},
		{"plain csv", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			w.WriteHeader(http.StatusOK)
		}, false},
		{"html discards encoding", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusOK)
		}, false},
		{"missing content type reads as html", func(w http.ResponseWriter, _ *http.Request) {
			w.Header()["Content-Type"] = nil
			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusOK)
		}, false},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/gzip")
			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusNotFound)
		}, false},
		{"redirect is not trusted", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Location", "/elsewhere.gz")
			w.Header().Set("Content-Type", "application/gzip")
			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(http.StatusMovedPermanently)
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := server(t, nil, tc.fn)
			p := New(Options{Timeout: time.Second})
			got, err := p.IsGzipEncoded(context.Background(), "'"+srv.URL+"/feed.csv'")
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestIsGzipEncoded_NonHTTPSchemeSkipsNetwork(t *testing.T) {
	p := New(Options{Client: &http.Client{Transport: failRT{t}}})
	for _, u := range []string{"ftp://feeds.example.com/a.csv", "sftp://x/y", "/local/path.csv"} {
		got, err := p.IsGzipEncoded(context.Background(), u)
		if err != nil || got {
			t.Fatalf("%s: got %v err %v", u, got, err)
		}
	}
}

func TestIsGzipEncoded_InvalidURL(t *testing.T) {
	p := New(Options{Client: &http.Client{Transport: failRT{t}}})
	_, err := p.IsGzipEncoded(context.Background(), "http://[::1")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestIsGzipEncoded_NetworkFailureIsPlain(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := New(Options{Timeout: 500 * time.Millisecond})
	got, err := p.IsGzipEncoded(context.Background(), url+"/feed.csv")
	if err != nil || got {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestIsGzipEncoded_CachesVerdict(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := rds.Open(context.Background(), rds.Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("rds open: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	var hits atomic.Int32
	srv := server(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
	})

	p := New(Options{Timeout: time.Second, Cache: kv, CacheTTL: time.Minute})
	for range 3 {
		got, err := p.IsGzipEncoded(context.Background(), srv.URL+"/feed")
		if err != nil || !got {
			t.Fatalf("got %v err %v", got, err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server hits = %d, want 1", n)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := p.IsGzipEncoded(context.Background(), srv.URL+"/feed"); err != nil {
		t.Fatalf("after expiry: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("server hits after expiry = %d, want 2", n)
	}
}

func TestIsGzipEncoded_CanceledContext(t *testing.T) {
	srv := server(t, nil, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	p := New(Options{RatePerSec: 1, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.IsGzipEncoded(ctx, srv.URL); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}
