package ext

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/task"
)

// Compile-time checks that Audit opts in to every lifecycle hook.
var (
	_ Extension     = (*Audit)(nil)
	_ RunStarted    = (*Audit)(nil)
	_ RunFinished   = (*Audit)(nil)
	_ TaskLaunched  = (*Audit)(nil)
	_ TaskCompleted = (*Audit)(nil)
	_ TaskFailed    = (*Audit)(nil)
	_ TaskRetrying  = (*Audit)(nil)
)

// Audit event actions. Each constant corresponds to one lifecycle hook
// and becomes the Action field of the emitted event.
const (
	ActionRunStarted    = "run.started"
	ActionRunFinished   = "run.finished"
	ActionTaskLaunched  = "task.launched"
	ActionTaskCompleted = "task.completed"
	ActionTaskFailed    = "task.failed"
	ActionTaskRetrying  = "task.retrying"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AllActions returns every action the Audit extension can emit.
func AllActions() []string {
	return []string{
		ActionRunStarted,
		ActionRunFinished,
		ActionTaskLaunched,
		ActionTaskCompleted,
		ActionTaskFailed,
		ActionTaskRetrying,
	}
}

// Event is one entry in the audit trail. RunID is set on run-level events
// and on task resolutions, which carry it in their record; launch and
// retry events identify the task only.
type Event struct {
	Time     time.Time      `json:"time"`
	Action   string         `json:"action"`
	RunID    string         `json:"run_id,omitempty"`
	TaskID   string         `json:"task_id,omitempty"`
	Outcome  string         `json:"outcome"`
	Severity string         `json:"severity"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Recorder is the interface audit backends must implement. It is defined
// here so the extension does not depend on any particular sink; callers
// inject the concrete backend at wiring time.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, evt *Event) error
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, evt *Event) error

func (f RecorderFunc) Record(ctx context.Context, evt *Event) error {
	return f(ctx, evt)
}

// Audit bridges lifecycle hooks to an audit trail backend. Each hook
// emits one structured event through the [Recorder]. Recorder errors are
// logged and never propagated, so a broken trail cannot fail a run.
type Audit struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// AuditOption configures an Audit extension.
type AuditOption func(*Audit)

// WithAuditActions restricts the extension to emit only the listed
// actions. By default all six actions are enabled. Unknown actions are
// silently ignored.
func WithAuditActions(actions ...string) AuditOption {
	return func(a *Audit) {
		a.enabled = make(map[string]bool, len(actions))
		for _, action := range actions {
			a.enabled[action] = true
		}
	}
}

// WithAuditLogger sets a custom logger for the extension.
func WithAuditLogger(l *slog.Logger) AuditOption {
	return func(a *Audit) { a.logger = l }
}

// NewAudit creates an Audit extension that emits events through r.
func NewAudit(r Recorder, opts ...AuditOption) *Audit {
	a := &Audit{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Extension.
func (a *Audit) Name() string { return "audit" }

// OnRunStarted implements RunStarted.
func (a *Audit) OnRunStarted(ctx context.Context, runID id.RunID, total int) error {
	return a.record(ctx, ActionRunStarted, SeverityInfo, OutcomeSuccess,
		runID.String(), "",
		"tasks", total,
	)
}

// OnRunFinished implements RunFinished.
func (a *Audit) OnRunFinished(ctx context.Context, runID id.RunID, elapsed time.Duration) error {
	return a.record(ctx, ActionRunFinished, SeverityInfo, OutcomeSuccess,
		runID.String(), "",
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnTaskLaunched implements TaskLaunched.
func (a *Audit) OnTaskLaunched(ctx context.Context, t *task.Task, seq int) error {
	return a.record(ctx, ActionTaskLaunched, SeverityInfo, OutcomeSuccess,
		"", t.ID,
		"seq", seq,
		"kind", string(t.Kind),
	)
}

// OnTaskCompleted implements TaskCompleted.
func (a *Audit) OnTaskCompleted(ctx context.Context, t *task.Task, rec *record.Record) error {
	return a.record(ctx, ActionTaskCompleted, SeverityInfo, OutcomeSuccess,
		rec.RunID.String(), t.ID,
		"attempts", rec.Result.Attempts,
		"elapsed_ms", rec.Elapsed.Milliseconds(),
	)
}

// OnTaskFailed implements TaskFailed.
func (a *Audit) OnTaskFailed(ctx context.Context, t *task.Task, rec *record.Record) error {
	return a.record(ctx, ActionTaskFailed, SeverityCritical, OutcomeFailure,
		rec.RunID.String(), t.ID,
		"reason", rec.Result.Reason,
		"attempts", rec.Result.Attempts,
		"cancelled", rec.Result.Cancelled,
	)
}

// OnTaskRetrying implements TaskRetrying.
func (a *Audit) OnTaskRetrying(ctx context.Context, t *task.Task, attempt int, wait time.Duration) error {
	return a.record(ctx, ActionTaskRetrying, SeverityWarning, OutcomeFailure,
		"", t.ID,
		"attempt", attempt,
		"wait_ms", wait.Milliseconds(),
	)
}

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (a *Audit) record(
	ctx context.Context,
	action, severity, outcome string,
	runID, taskID string,
	kvPairs ...any,
) error {
	if a.enabled != nil && !a.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &Event{
		Time:     time.Now().UTC(),
		Action:   action,
		RunID:    runID,
		TaskID:   taskID,
		Outcome:  outcome,
		Severity: severity,
		Metadata: meta,
	}

	if err := a.recorder.Record(ctx, evt); err != nil {
		a.logger.Warn("audit: failed to record event",
			"action", action,
			"task_id", taskID,
			"error", err,
		)
	}
	return nil
}
