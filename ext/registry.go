package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/task"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type runStartedEntry struct {
	name string
	hook RunStarted
}

type runFinishedEntry struct {
	name string
	hook RunFinished
}

type taskLaunchedEntry struct {
	name string
	hook TaskLaunched
}

type taskCompletedEntry struct {
	name string
	hook TaskCompleted
}

type taskFailedEntry struct {
	name string
	hook TaskFailed
}

type taskRetryingEntry struct {
	name string
	hook TaskRetrying
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	runStarted    []runStartedEntry
	runFinished   []runFinishedEntry
	taskLaunched  []taskLaunchedEntry
	taskCompleted []taskCompletedEntry
	taskFailed    []taskFailedEntry
	taskRetrying  []taskRetryingEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(RunStarted); ok {
		r.runStarted = append(r.runStarted, runStartedEntry{name, h})
	}
	if h, ok := e.(RunFinished); ok {
		r.runFinished = append(r.runFinished, runFinishedEntry{name, h})
	}
	if h, ok := e.(TaskLaunched); ok {
		r.taskLaunched = append(r.taskLaunched, taskLaunchedEntry{name, h})
	}
	if h, ok := e.(TaskCompleted); ok {
		r.taskCompleted = append(r.taskCompleted, taskCompletedEntry{name, h})
	}
	if h, ok := e.(TaskFailed); ok {
		r.taskFailed = append(r.taskFailed, taskFailedEntry{name, h})
	}
	if h, ok := e.(TaskRetrying); ok {
		r.taskRetrying = append(r.taskRetrying, taskRetryingEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Run event emitters
// ──────────────────────────────────────────────────

// EmitRunStarted notifies all extensions that implement RunStarted.
func (r *Registry) EmitRunStarted(ctx context.Context, runID id.RunID, total int) {
	for _, e := range r.runStarted {
		if err := e.hook.OnRunStarted(ctx, runID, total); err != nil {
			r.logHookError("OnRunStarted", e.name, err)
		}
	}
}

// EmitRunFinished notifies all extensions that implement RunFinished.
func (r *Registry) EmitRunFinished(ctx context.Context, runID id.RunID, elapsed time.Duration) {
	for _, e := range r.runFinished {
		if err := e.hook.OnRunFinished(ctx, runID, elapsed); err != nil {
			r.logHookError("OnRunFinished", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Task event emitters
// ──────────────────────────────────────────────────

// EmitTaskLaunched notifies all extensions that implement TaskLaunched.
func (r *Registry) EmitTaskLaunched(ctx context.Context, t *task.Task, seq int) {
	for _, e := range r.taskLaunched {
		if err := e.hook.OnTaskLaunched(ctx, t, seq); err != nil {
			r.logHookError("OnTaskLaunched", e.name, err)
		}
	}
}

// EmitTaskCompleted notifies all extensions that implement TaskCompleted.
func (r *Registry) EmitTaskCompleted(ctx context.Context, t *task.Task, rec *record.Record) {
	for _, e := range r.taskCompleted {
		if err := e.hook.OnTaskCompleted(ctx, t, rec); err != nil {
			r.logHookError("OnTaskCompleted", e.name, err)
		}
	}
}

// EmitTaskFailed notifies all extensions that implement TaskFailed.
func (r *Registry) EmitTaskFailed(ctx context.Context, t *task.Task, rec *record.Record) {
	for _, e := range r.taskFailed {
		if err := e.hook.OnTaskFailed(ctx, t, rec); err != nil {
			r.logHookError("OnTaskFailed", e.name, err)
		}
	}
}

// EmitTaskRetrying notifies all extensions that implement TaskRetrying.
func (r *Registry) EmitTaskRetrying(ctx context.Context, t *task.Task, attempt int, wait time.Duration) {
	for _, e := range r.taskRetrying {
		if err := e.hook.OnTaskRetrying(ctx, t, attempt, wait); err != nil {
			r.logHookError("OnTaskRetrying", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the run.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
