package dispatch

import (
	"context"

	"github.com/ronfux/LeadGenius/id"
)

type ctxKey int

const runIDKey ctxKey = iota

// WithRunID returns a context carrying the run identifier. The
// dispatcher sets it on the run context so extensions and middleware
// can correlate events belonging to the same run.
func WithRunID(ctx context.Context, runID id.RunID) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run identifier set by WithRunID.
func RunIDFromContext(ctx context.Context) (id.RunID, bool) {
	runID, ok := ctx.Value(runIDKey).(id.RunID)
	return runID, ok
}
