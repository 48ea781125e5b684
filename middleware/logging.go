package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/ronfux/LeadGenius/task"
)

// Logging returns middleware that logs attempt start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, t *task.Task, next Handler) error {
		logger.Info("attempt started",
			slog.String("task_id", t.ID),
			slog.String("kind", string(t.Kind)),
			slog.Int("attempt", attempt(ctx)),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("attempt failed",
				slog.String("task_id", t.ID),
				slog.String("kind", string(t.Kind)),
				slog.Int("attempt", attempt(ctx)),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("attempt completed",
				slog.String("task_id", t.ID),
				slog.String("kind", string(t.Kind)),
				slog.Int("attempt", attempt(ctx)),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
