// Package csvrows decodes a delimited offer feed into row results
package csvrows

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"merchantfeed/internal/core/normalize"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

// Options configures a Source
type Options struct {
	// Delimiter is a single character, comma when empty
	Delimiter string
	// Enclosure is a single byte quote character, double quote when empty
	Enclosure string
	// Mapping maps header names to offer fields and wins over the built in aliases
	Mapping map[string]string
	// SkipInvalid drops broken rows instead of surfacing them as invalid results
	SkipInvalid bool
}

// aliases maps normalized header keys to offer fields
var aliases = map[string][]string{
	"id":           {"id", "sku", "offer_id", "product_id", "aid", "article_number"},
	"title":        {"title", "name", "product_name"},
	"description":  {"description", "desc", "long_description"},
	"price":        {"price", "price_amount", "amount"},
	"currency":     {"currency", "currency_code"},
	"url":          {"url", "link", "deeplink", "product_url"},
	"image_url":    {"image_url", "image", "image_link", "img_url"},
	"brand":        {"brand", "manufacturer"},
	"ean":          {"ean", "gtin", "ean13"},
	"category":     {"category", "product_type", "category_path"},
	"availability": {"availability", "stock", "delivery_status"},
}

var aliasIndex = func() map[string]string {
	m := make(map[string]string)
	for field, keys := range aliases {
		for _, k := range keys {
			m[k] = field
		}
	}
	return m
}()

// Source is a lazy, single pass row source over a csv stream
type Source struct {
	cr     *countingReader
	r      *csv.Reader
	quote  byte
	opts   Options
	fields []string
	line   int
	done   bool
}

// New wraps r; the header is read on the first call to Next
func New(r io.Reader, o Options) (*Source, error) {
	delim := ','
	switch {
	case o.Delimiter == "":
	case o.Delimiter == `\t`:
		delim = '\t'
	case utf8.RuneCountInString(o.Delimiter) == 1:
		delim, _ = utf8.DecodeRuneInString(o.Delimiter)
	default:
		return nil, perr.Configf("delimiter must be a single character, got %q", o.Delimiter)
	}
	quote := byte('"')
	if o.Enclosure != "" {
		if len(o.Enclosure) != 1 || o.Enclosure[0] >= utf8.RuneSelf ||
			o.Enclosure[0] == '\r' || o.Enclosure[0] == '\n' || rune(o.Enclosure[0]) == delim {
			return nil, perr.Configf("enclosure must be a single ascii character other than the delimiter, got %q", o.Enclosure)
		}
		quote = o.Enclosure[0]
	}

	cr := &countingReader{r: r}
	var in io.Reader = cr
	if quote != '"' {
		in = &swapReader{r: cr, a: quote, b: '"'}
	}
	cr2 := csv.NewReader(in)
	cr2.Comma = delim
	cr2.FieldsPerRecord = -1
	cr2.ReuseRecord = true

	return &Source{cr: cr, r: cr2, quote: quote, opts: o}, nil
}

// Offset implements dom.RowSource
func (s *Source) Offset() int64 { return s.cr.n }

// Next implements dom.RowSource
func (s *Source) Next(ctx context.Context) (dom.RowResult, error) {
	if s.done {
		return dom.RowResult{EOF: true}, nil
	}
	if err := ctx.Err(); err != nil {
		return dom.RowResult{}, err
	}
	if s.fields == nil {
		if err := s.readHeader(); err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				return dom.RowResult{EOF: true}, nil
			}
			return dom.RowResult{}, err
		}
	}

	for {
		rec, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			s.done = true
			return dom.RowResult{EOF: true}, nil
		}
		s.line++

		var pe *csv.ParseError
		if errors.As(err, &pe) {
			if s.opts.SkipInvalid {
				continue
			}
			return s.invalid(pe.Err.Error()), nil
		}
		if err != nil {
			return dom.RowResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read feed line %d", s.line)
		}
		if len(rec) != len(s.fields) {
			if s.opts.SkipInvalid {
				continue
			}
			return s.invalid("wrong number of fields"), nil
		}
		return dom.RowResult{Valid: true, Offer: s.offer(rec)}, nil
	}
}

func (s *Source) readHeader() error {
	rec, err := s.r.Read()
	if err != nil {
		return err
	}
	fields := make([]string, len(rec))
	for i, h := range rec {
		h = s.unswap(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		fields[i] = s.fieldFor(h)
	}
	s.fields = fields
	return nil
}

func (s *Source) fieldFor(header string) string {
	if f, ok := s.opts.Mapping[header]; ok {
		return f
	}
	key := normalize.Key(header)
	if f, ok := s.opts.Mapping[key]; ok {
		return f
	}
	if f, ok := aliasIndex[key]; ok {
		return f
	}
	return key
}

func (s *Source) invalid(problem string) dom.RowResult {
	return dom.RowResult{Valid: false, Problem: problem, Offer: &dom.Offer{Line: s.line}}
}

func (s *Source) offer(rec []string) *dom.Offer {
	o := &dom.Offer{Line: s.line}
	for i, v := range rec {
		v = s.unswap(v)
		switch s.fields[i] {
		case "id":
			o.ID = v
		case "title":
			o.Title = v
		case "description":
			o.Description = v
		case "price":
			o.Price = v
		case "currency":
			o.Currency = v
		case "url":
			o.URL = v
		case "image_url":
			o.ImageURL = v
		case "brand":
			o.Brand = v
		case "ean":
			o.EAN = v
		case "category":
			o.Category = v
		case "availability":
			o.Availability = v
		case "":
		default:
			if v == "" {
				continue
			}
			if o.Extra == nil {
				o.Extra = make(map[string]string)
			}
			o.Extra[s.fields[i]] = v
		}
	}
	return o
}

// unswap restores the quote characters swapped on the way into the csv reader
func (s *Source) unswap(v string) string {
	if s.quote == '"' || (strings.IndexByte(v, s.quote) < 0 && strings.IndexByte(v, '"') < 0) {
		return v
	}
	b := []byte(v)
	swapBytes(b, s.quote, '"')
	return string(b)
}

// swapReader exchanges two ascii bytes so a custom enclosure reads as the csv quote
type swapReader struct {
	r    io.Reader
	a, b byte
}

func (s *swapReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	swapBytes(p[:n], s.a, s.b)
	return n, err
}

func swapBytes(p []byte, a, b byte) {
	for i, c := range p {
		switch c {
		case a:
			p[i] = b
		case b:
			p[i] = a
		}
	}
}

// countingReader tracks bytes pulled from the underlying stream
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
