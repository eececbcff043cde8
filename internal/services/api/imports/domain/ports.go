package domain

import (
	"context"

	fdom "merchantfeed/internal/services/feedimport/domain"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Enqueue(ctx context.Context, in EnqueueInput) (JobView, error)
	Job(ctx context.Context, jobID string) (JobView, error)
	Stats(ctx context.Context, jobID string) (StatsView, error)
	Errors(ctx context.Context, jobID string, q ErrorsQuery) (ErrorPage, error)
	Probe(ctx context.Context, merchantID string) (fdom.ProbeResult, error)
}

// FeedPort is the slice of the feed import worker this API drives
type FeedPort interface {
	fdom.EnqueuePort
	fdom.ProbePort
}
