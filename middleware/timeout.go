package middleware

import (
	"context"
	"time"

	"github.com/ronfux/LeadGenius/task"
)

// Timeout returns middleware that enforces a per-attempt deadline.
// A zero or negative timeout disables the deadline. When the deadline
// is exceeded the attempt context is cancelled and the handler should
// return context.DeadlineExceeded.
func Timeout(timeout time.Duration) Middleware {
	return func(ctx context.Context, _ *task.Task, next Handler) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
