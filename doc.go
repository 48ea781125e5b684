// Package leadgenius provides a bounded-concurrency dispatch and aggregation
// engine for market-research tasks. It fans independent research tasks out to
// an external executor (typically a model CLI invoked as a subprocess),
// persists every outcome as it completes, and merges the structured results
// into a deduplicated, exportable dataset of businesses.
//
// LeadGenius is designed as a library, not a service. Import it, configure an
// executor and a result store, and run a task list:
//
//	d, err := dispatch.New(exec, st,
//	    dispatch.WithConfig(leadgenius.DefaultConfig()),
//	)
//	records, err := d.Run(ctx, tasks)
//
// # Architecture
//
// Each stage is its own package: plan builds the task list, dispatch runs it,
// store backends persist outcomes behind the record.Store interface, and
// aggregate turns stored outcomes into the final dataset. A failure on one
// task never aborts the run; every input task resolves to exactly one stored
// record.
//
// Run and record IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package leadgenius
