package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "merchantfeed/internal/platform/errors"
)

type enqueueDTO struct {
	MerchantID string `json:"merchant_id" validate:"required,max=8"`
}

func postJSON(h Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/feeds/imports", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestJSONHandler(t *testing.T) {
	h := JSONHandler(func(_ *http.Request, in enqueueDTO) (any, error) {
		switch in.MerchantID {
		case "busy":
			return nil, perr.Newf(perr.ErrorCodeUnavailable, "merchant busy")
		case "later":
			return Accepted(map[string]string{"merchant": in.MerchantID}), nil
		}
		return map[string]string{"merchant": in.MerchantID}, nil
	})

	cases := []struct {
		body string
		code int
		want string
	}{
		{`{"merchant_id":"m-1"}`, http.StatusOK, `"merchant":"m-1"`},
		{`{"merchant_id":"later"}`, http.StatusAccepted, `"merchant":"later"`},
		{`{"merchant_id":"busy"}`, http.StatusServiceUnavailable, "merchant busy"},
		{`{"merchant_id":"much-too-long"}`, http.StatusBadRequest, "merchant_id"},
		{`{`, http.StatusBadRequest, "error"},
	}
	for _, tc := range cases {
		rr := postJSON(h, tc.body)
		if rr.Code != tc.code || !strings.Contains(rr.Body.String(), tc.want) {
			t.Errorf("%s: code=%d body=%s", tc.body, rr.Code, rr.Body.String())
		}
	}
}
