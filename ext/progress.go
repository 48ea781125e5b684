package ext

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/task"
)

// Compile-time checks that Progress opts in to the hooks it needs.
var (
	_ Extension     = (*Progress)(nil)
	_ RunStarted    = (*Progress)(nil)
	_ RunFinished   = (*Progress)(nil)
	_ TaskCompleted = (*Progress)(nil)
	_ TaskFailed    = (*Progress)(nil)
)

// Progress logs a running done/total count as task records land. It is
// the default extension wired into every run so long batches show
// movement on the console.
type Progress struct {
	logger *slog.Logger
	total  atomic.Int64
	done   atomic.Int64
}

// NewProgress creates a progress logger extension.
func NewProgress(logger *slog.Logger) *Progress {
	if logger == nil {
		logger = slog.Default()
	}
	return &Progress{logger: logger}
}

// Name implements Extension.
func (p *Progress) Name() string { return "progress" }

// OnRunStarted resets the counters for a new run.
func (p *Progress) OnRunStarted(_ context.Context, runID id.RunID, total int) error {
	p.total.Store(int64(total))
	p.done.Store(0)
	p.logger.Info("run started",
		slog.String("run_id", runID.String()),
		slog.Int("tasks", total),
	)
	return nil
}

// OnTaskCompleted counts a success.
func (p *Progress) OnTaskCompleted(_ context.Context, t *task.Task, rec *record.Record) error {
	p.step(t, rec, "completed")
	return nil
}

// OnTaskFailed counts a terminal failure.
func (p *Progress) OnTaskFailed(_ context.Context, t *task.Task, rec *record.Record) error {
	p.step(t, rec, "failed")
	return nil
}

// OnRunFinished logs the closing line.
func (p *Progress) OnRunFinished(_ context.Context, runID id.RunID, elapsed time.Duration) error {
	p.logger.Info("run finished",
		slog.String("run_id", runID.String()),
		slog.Duration("elapsed", elapsed),
	)
	return nil
}

func (p *Progress) step(t *task.Task, rec *record.Record, outcome string) {
	done := p.done.Add(1)
	p.logger.Info("task "+outcome,
		slog.String("task_id", t.ID),
		slog.Int64("done", done),
		slog.Int64("total", p.total.Load()),
		slog.Int("attempts", rec.Result.Attempts),
		slog.Duration("elapsed", rec.Elapsed),
	)
}
