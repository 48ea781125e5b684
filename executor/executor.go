package executor

import (
	"context"

	"github.com/ronfux/LeadGenius/task"
)

// Result is the raw outcome of one executor invocation. A completed
// invocation with a non-zero exit status is a Result, not an error; errors
// are reserved for invocations that could not run to completion (missing
// binary, killed by deadline).
type Result struct {
	// Output is the captured standard output, expected to contain a
	// single structured document.
	Output string

	// Stderr is the captured diagnostic output.
	Stderr string

	// ExitCode is the subprocess exit status, zero on success.
	ExitCode int
}

// Executor performs a task's actual work against an external capability.
// Implementations must be safe for concurrent use; the dispatcher invokes
// Execute from multiple workers.
type Executor interface {
	Execute(ctx context.Context, t *task.Task) (*Result, error)
}

// Func adapts a plain function to the Executor interface.
type Func func(ctx context.Context, t *task.Task) (*Result, error)

// Execute implements Executor.
func (f Func) Execute(ctx context.Context, t *task.Task) (*Result, error) {
	return f(ctx, t)
}
