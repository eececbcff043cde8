package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "merchantfeed/internal/platform/errors"
)

// DecodeOptions controls how a body is read
type DecodeOptions struct {
	MaxBytes     int64
	AllowUnknown bool
	AllowEmpty   bool
}

// DefaultMaxBytes caps a request body when no limit is given
const DefaultMaxBytes = 1 << 20

// JSON decodes the body of r into T and validates it with the shared validator
func JSON[T any](r *http.Request, opts ...DecodeOptions) (T, error) {
	var (
		o   DecodeOptions
		dst T
	)
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(io.LimitReader(r.Body, o.MaxBytes))
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	switch err := dec.Decode(&dst); {
	case errors.Is(err, io.EOF):
		if !o.AllowEmpty {
			return dst, perr.JSONErrf("empty body")
		}
		return dst, nil
	case err != nil:
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}
	if err := Default().Struct(dst); err != nil {
		var zero T
		return zero, err
	}
	return dst, nil
}
