package middleware

import "context"

type ctxKey int

const attemptKey ctxKey = iota

// WithAttempt records the 1-based attempt number on the context. The
// dispatcher sets it before invoking the chain so logging, tracing, and
// metrics middleware can label each attempt.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

// AttemptFromContext returns the attempt number set by WithAttempt.
func AttemptFromContext(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(attemptKey).(int)
	return n, ok
}

// attempt returns the attempt number or 0 when unset.
func attempt(ctx context.Context) int {
	n, _ := AttemptFromContext(ctx)
	return n
}
