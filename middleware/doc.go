// Package middleware provides composable middleware for task attempts.
//
// A [Middleware] is a function that wraps an attempt handler. Middleware
// are composed into a chain using [Chain] and applied around every
// executor call. They are applied right-to-left: the first middleware in
// the slice is the outermost wrapper.
//
//	// logging wraps recover wraps handler
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging] logs task ID, attempt, duration, and outcome per attempt
//   - [Recover] catches panics and converts them to errors
//   - [Timeout] cancels the attempt context after a configured duration
//   - [Tracing] wraps each attempt in an OpenTelemetry span
//   - [Metrics] records per-attempt duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, t *task.Task, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting (e.g., circuit breaker, rate limiting).
package middleware
