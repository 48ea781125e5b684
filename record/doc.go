// Package record defines the persisted outcome of one task and the store
// contract for writing and reading outcomes.
//
// A [Record] is created exactly once per task, when the task resolves
// (success or exhausted-retry failure), and is never mutated after write.
// The dispatcher writes records as tasks complete; the aggregator reads them
// back in input order (ascending [Record.Seq]) so the final dataset is
// reproducible regardless of completion order.
//
// [Store] is the consumer-side persistence interface; backends live under
// store/.
package record
