// Package ext defines the extension system for LeadGenius.
//
// Extensions are notified of lifecycle events and can react to them,
// recording metrics or printing progress. Each lifecycle hook is a
// separate interface so extensions opt in only to the events they
// care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnTaskCompleted(ctx context.Context, t *task.Task, rec *record.Record) error {
//	    log.Printf("task %s done after %d attempt(s)", t.ID, rec.Result.Attempts)
//	    return nil
//	}
//
// # Run Lifecycle Hooks
//
//   - [RunStarted] fires once before the first task launches
//   - [RunFinished] fires after every task has a record
//
// # Task Lifecycle Hooks
//
//   - [TaskLaunched] fires when a task is handed to a worker
//   - [TaskCompleted] fires after a task produces a success record
//   - [TaskFailed] fires when a task fails with no retries remaining
//   - [TaskRetrying] fires when an attempt fails and another is scheduled
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
