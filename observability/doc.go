// Package observability provides a metrics extension that records
// run-level lifecycle counters through OpenTelemetry.
//
// Register it with the dispatcher to track runs, completions, failures,
// and retries without touching the hot path:
//
//	d, err := dispatch.New(exec, st,
//	    dispatch.WithExtensions(observability.NewMetricsExtension()),
//	)
//
// If no global MeterProvider is configured the instruments are noops and
// the extension costs nothing.
package observability
