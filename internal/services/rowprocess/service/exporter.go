package service

import (
	"context"
	"strings"

	"merchantfeed/internal/core/normalize"
	"merchantfeed/internal/platform/net/http/bind"

	perr "merchantfeed/internal/platform/errors"
	fdom "merchantfeed/internal/services/feedimport/domain"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

// OfferExporter validates offers and hands them to the sink for the import variant
type OfferExporter struct {
	sink    dom.OfferSink
	variant fdom.Variant
	v       *bind.Validator
}

// NewExporter constructs an exporter for one variant
func NewExporter(sink dom.OfferSink, v fdom.Variant) *OfferExporter {
	return &OfferExporter{sink: sink, variant: v, v: bind.Default()}
}

// Export implements dom.Exporter
// validation and constraint failures are rejections; any other sink error aborts the stream
func (e *OfferExporter) Export(ctx context.Context, merchantID string, o *dom.Offer) (dom.RowOutcome, error) {
	prepare(o)

	if err := e.v.Struct(o); err != nil {
		var field string
		if pe, ok := perr.As(err); ok {
			field = pe.Field()
		}
		return dom.Rejected(err.Error(), map[string]any{
			"field":    field,
			"offer_id": o.ID,
			"line":     o.Line,
		}), nil
	}

	var err error
	switch e.variant {
	case fdom.VariantUnmatchedReprocess:
		err = e.sink.UpsertUnmatched(ctx, merchantID, o)
	default:
		err = e.sink.UpsertOffer(ctx, merchantID, o)
	}
	if err == nil {
		return dom.Exported(), nil
	}
	if rowLevel(err) {
		return dom.Rejected(err.Error(), map[string]any{
			"offer_id": o.ID,
			"line":     o.Line,
		}), nil
	}
	return dom.RowOutcome{}, err
}

// rowLevel reports sink errors that only concern the current row
func rowLevel(err error) bool {
	return perr.IsCode(err, perr.ErrorCodeRowProcessing) ||
		perr.IsCheckViolation(err) ||
		perr.IsNotNullViolation(err) ||
		perr.IsForeignKeyViolation(err)
}

// prepare cleans text fields in place before validation
func prepare(o *dom.Offer) {
	o.ID = strings.TrimSpace(o.ID)
	o.Title = normalize.Text(o.Title)
	o.Description = normalize.Text(o.Description)
	o.Brand = normalize.Text(o.Brand)
	o.Category = normalize.Text(o.Category)
	o.URL = strings.TrimSpace(o.URL)
	o.ImageURL = strings.TrimSpace(o.ImageURL)
	o.EAN = strings.TrimSpace(o.EAN)
	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	o.Availability = normalize.Key(o.Availability)
	if p, ok := normalize.Decimal(o.Price); ok {
		o.Price = p
	}
}
