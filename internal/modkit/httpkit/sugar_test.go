package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "merchantfeed/internal/platform/errors"
	phttp "merchantfeed/internal/platform/net/http"
)

type enqueueBody struct {
	MerchantID string `json:"merchant_id" validate:"required"`
}

func sugarRouter() http.Handler {
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	Get(r, "/imports/{id}", func(req *http.Request) (any, error) {
		switch id := chi.URLParam(req, "id"); id {
		case "missing":
			return nil, perr.NotFoundf("import %s not found", id)
		case "broken":
			return nil, errors.New("db down")
		case "paged":
			return List([]string{"e1"}, 1, 50, "c2"), nil
		default:
			return map[string]string{"id": id}, nil
		}
	})
	PostJSON(r, "/imports", func(_ *http.Request, in enqueueBody) (any, error) {
		return Accepted(map[string]string{"merchant_id": in.MerchantID}), nil
	})
	return m
}

func do(t *testing.T, method, path, body string) (int, Envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	sugarRouter().ServeHTTP(rec, req)
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestGet(t *testing.T) {
	cases := map[string]int{
		"/imports/j-1":     http.StatusOK,
		"/imports/missing": http.StatusNotFound,
		"/imports/broken":  http.StatusInternalServerError,
		"/imports/paged":   http.StatusOK,
	}
	for path, want := range cases {
		code, env := do(t, http.MethodGet, path, "")
		if code != want || env.StatusCode != want {
			t.Errorf("%s: code=%d env=%+v", path, code, env)
		}
	}

	_, env := do(t, http.MethodGet, "/imports/paged", "")
	if env.Page == nil || env.Page.NextCursor != "c2" {
		t.Fatalf("list passthrough lost: %#v", env)
	}
}

func TestPostJSON(t *testing.T) {
	code, env := do(t, http.MethodPost, "/imports", `{"merchant_id":"m-1"}`)
	if code != http.StatusAccepted || env.Data.(map[string]any)["merchant_id"] != "m-1" {
		t.Fatalf("code=%d env=%+v", code, env)
	}
	if code, _ := do(t, http.MethodPost, "/imports", `{}`); code != http.StatusBadRequest {
		t.Fatalf("missing merchant code = %d", code)
	}
}
