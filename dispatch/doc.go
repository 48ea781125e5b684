// Package dispatch runs a batch of research tasks through an executor
// with bounded concurrency, spaced launches, per-attempt timeouts, and
// retries with backoff.
//
// A run produces exactly one record per task: a success carrying the
// executor's raw output, or a failure carrying the last attempt's
// reason. Records are persisted through a [record.Store] as they
// complete, so a crash or cancellation loses nothing that already
// finished.
//
//	d, err := dispatch.New(exec, st, dispatch.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	records, err := d.Run(ctx, tasks)
//
// Cancelling the run context stops new launches and new attempts;
// attempts already in flight run to completion or to their own timeout.
// Tasks that never ran still get records, marked cancelled, so the
// output remains one record per task.
package dispatch
