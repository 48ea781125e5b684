package ext

import (
	"context"
	"time"

	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/task"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Run lifecycle hooks
// ──────────────────────────────────────────────────

// RunStarted is called once before the first task launches.
type RunStarted interface {
	OnRunStarted(ctx context.Context, runID id.RunID, total int) error
}

// RunFinished is called after every task has a record.
type RunFinished interface {
	OnRunFinished(ctx context.Context, runID id.RunID, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Task lifecycle hooks
// ──────────────────────────────────────────────────

// TaskLaunched is called when a task is handed to a worker.
type TaskLaunched interface {
	OnTaskLaunched(ctx context.Context, t *task.Task, seq int) error
}

// TaskCompleted is called after a task produces a success record.
type TaskCompleted interface {
	OnTaskCompleted(ctx context.Context, t *task.Task, rec *record.Record) error
}

// TaskFailed is called when a task fails terminally (no more retries).
type TaskFailed interface {
	OnTaskFailed(ctx context.Context, t *task.Task, rec *record.Record) error
}

// TaskRetrying is called when an attempt fails but another is scheduled.
type TaskRetrying interface {
	OnTaskRetrying(ctx context.Context, t *task.Task, attempt int, wait time.Duration) error
}
