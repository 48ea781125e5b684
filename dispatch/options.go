package dispatch

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/ext"
	"github.com/ronfux/LeadGenius/middleware"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConfig sets the run configuration. If not set,
// leadgenius.DefaultConfig() is used.
func WithConfig(cfg leadgenius.Config) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// WithLogger sets the logger for the dispatcher and its middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithExtensions registers lifecycle extensions. Extensions are
// notified in registration order, after the built-in metrics extension.
func WithExtensions(exts ...ext.Extension) Option {
	return func(d *Dispatcher) {
		d.exts = append(d.exts, exts...)
	}
}

// WithMiddleware appends middleware to the attempt chain, inside the
// built-in stack (recover, tracing, metrics, logging, timeout).
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) {
		d.mws = append(d.mws, mws...)
	}
}

// WithTracerProvider sets a custom OTel TracerProvider. When set, the
// tracing middleware uses this provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		d.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider. When set, both
// the metrics middleware and the built-in metrics extension use this
// provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(d *Dispatcher) {
		d.meterProvider = mp
	}
}
