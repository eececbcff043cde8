// Package net holds request context helpers shared by the HTTP layers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"merchantfeed/internal/platform/logger"
)

type merchantKey struct{}

// WithRequest stores the request id and the target merchant on ctx
// both also end up on loggers from logger.C
func WithRequest(ctx context.Context, reqID, merchantID string) context.Context {
	if reqID == "" && merchantID == "" {
		return ctx
	}
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if merchantID != "" {
		ctx = context.WithValue(ctx, merchantKey{}, merchantID)
	}
	return logger.WithRequest(ctx, reqID, merchantID)
}

// RequestID returns the request id, empty when unset
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// MerchantID returns the merchant a request targets, empty when unset
func MerchantID(ctx context.Context) string {
	id, _ := ctx.Value(merchantKey{}).(string)
	return id
}
