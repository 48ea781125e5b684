// Package task defines the unit of research work handed to the dispatcher.
//
// A [Task] is an immutable description: a caller-chosen ID (unique within a
// run, used for deterministic artifact naming), a [Kind] selecting the task
// shape, a [Payload] descriptor, and the rendered prompt the executor will
// send to the model. Tasks carry no shared mutable state and execute
// independently of one another.
//
// Kinds form a closed set, validated at construction:
//
//	t, err := task.New("houston_tx", task.KindCitySearch,
//	    task.Payload{City: "Houston", State: "TX", Industry: "ems"},
//	    task.WithPrompt(prompt),
//	)
//
// The plan package builds task sequences; the dispatcher accepts any
// well-formed sequence regardless of origin.
package task
