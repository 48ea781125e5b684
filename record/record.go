package record

import (
	"context"
	"time"

	"github.com/ronfux/LeadGenius/id"
)

// Status is the terminal outcome of a task.
type Status string

const (
	// StatusSuccess means the executor produced usable raw output.
	StatusSuccess Status = "success"
	// StatusFailure means the task exhausted its attempts, or was cut off
	// by run cancellation, without producing usable output.
	StatusFailure Status = "failure"
)

// Result is the execution outcome of one task: either a success carrying the
// raw output document, or a failure carrying the reason and the number of
// attempts consumed.
type Result struct {
	Status Status `json:"status"`

	// RawOutput is the opaque structured document produced by the
	// executor. Set only on success.
	RawOutput string `json:"raw_output,omitempty"`

	// Reason describes the terminal failure. Set only on failure.
	Reason string `json:"reason,omitempty"`

	// Attempts is the number of executor invocations consumed.
	Attempts int `json:"attempts"`

	// Cancelled marks failures caused by run-level cancellation rather
	// than by the task itself.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Success builds a success Result.
func Success(rawOutput string, attempts int) Result {
	return Result{Status: StatusSuccess, RawOutput: rawOutput, Attempts: attempts}
}

// Failure builds a terminal failure Result.
func Failure(reason string, attempts int) Result {
	return Result{Status: StatusFailure, Reason: reason, Attempts: attempts}
}

// CancelledFailure builds a failure Result for a task cut off by run
// cancellation. Attempts is the number of invocations made before the cut,
// zero for tasks that never launched.
func CancelledFailure(reason string, attempts int) Result {
	return Result{Status: StatusFailure, Reason: reason, Attempts: attempts, Cancelled: true}
}

// Success reports whether the result is a success.
func (r Result) Success() bool { return r.Status == StatusSuccess }

// Record is the persisted outcome of one task. Created when the task
// resolves; never mutated after write.
type Record struct {
	ID     id.RecordID `json:"id"`
	RunID  id.RunID    `json:"run_id"`
	TaskID string      `json:"task_id"`

	// Seq is the task's position in the run's input sequence. Reads sort
	// on it so first-seen order is reproducible across runs.
	Seq int `json:"seq"`

	// Timestamp is when the task resolved.
	Timestamp time.Time `json:"timestamp"`

	// Elapsed is total wall time across all attempts.
	Elapsed time.Duration `json:"elapsed"`

	Result Result `json:"result"`
}

// Store defines the persistence contract for records. Writes are
// append-only per task; saving an existing task ID overwrites that record
// only, so re-runs stay idempotent.
type Store interface {
	// Save persists a resolved record.
	Save(ctx context.Context, r *Record) error

	// Get retrieves the record for a task ID. Returns
	// leadgenius.ErrRecordNotFound when absent.
	Get(ctx context.Context, taskID string) (*Record, error)

	// List returns all records in ascending Seq order (ties broken by
	// task ID).
	List(ctx context.Context) ([]*Record, error)

	// Close releases backend resources. The store is unusable afterwards.
	Close() error
}
