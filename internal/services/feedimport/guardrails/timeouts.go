// Package guardrails holds time budgets and the per merchant lease for feed imports
package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds the phases of one import job
// zero values mean no extra timeout at that level
type Timeouts struct {
	// Import is the overall budget of the external pipeline
	Import time.Duration

	// Probe caps the transport encoding probe
	Probe time.Duration

	// DB caps each bookkeeping write around the pipeline
	DB time.Duration
}

// ForImport returns a sub context for the pipeline bounded by Import and any remaining parent budget
func ForImport(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Import)
}

// ForProbe returns a sub context for a probe request
func ForProbe(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Probe)
}

// ForDB returns a sub context for a bookkeeping write
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout picks the tighter of d and the parent remainder, never extending the parent
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
