package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ronfux/LeadGenius/ext"
	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/task"
)

// Compile-time interface checks.
var (
	_ ext.Extension     = (*MetricsExtension)(nil)
	_ ext.RunStarted    = (*MetricsExtension)(nil)
	_ ext.RunFinished   = (*MetricsExtension)(nil)
	_ ext.TaskCompleted = (*MetricsExtension)(nil)
	_ ext.TaskFailed    = (*MetricsExtension)(nil)
	_ ext.TaskRetrying  = (*MetricsExtension)(nil)
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/ronfux/LeadGenius/observability"

// MetricsExtension records run lifecycle metrics. Register it as an
// extension to automatically track run counts, run duration, task
// completions, terminal failures, and retry volume.
type MetricsExtension struct {
	runsStarted    metric.Int64Counter
	runDuration    metric.Float64Histogram
	tasksCompleted metric.Int64Counter
	tasksFailed    metric.Int64Counter
	taskRetries    metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. Use this variant to inject a specific MeterProvider.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}

	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	m.runsStarted, _ = meter.Int64Counter( //nolint:errcheck // noop fallback
		"leadgenius.run.started",
		metric.WithDescription("Total number of dispatch runs started"),
		metric.WithUnit("{run}"),
	)
	m.runDuration, _ = meter.Float64Histogram( //nolint:errcheck // noop fallback
		"leadgenius.run.duration",
		metric.WithDescription("Duration of a full dispatch run in seconds"),
		metric.WithUnit("s"),
	)
	m.tasksCompleted, _ = meter.Int64Counter( //nolint:errcheck // noop fallback
		"leadgenius.task.completed",
		metric.WithDescription("Total number of tasks that produced a success record"),
		metric.WithUnit("{task}"),
	)
	m.tasksFailed, _ = meter.Int64Counter( //nolint:errcheck // noop fallback
		"leadgenius.task.failed",
		metric.WithDescription("Total number of tasks that failed terminally"),
		metric.WithUnit("{task}"),
	)
	m.taskRetries, _ = meter.Int64Counter( //nolint:errcheck // noop fallback
		"leadgenius.task.retries",
		metric.WithDescription("Total number of retry attempts scheduled"),
		metric.WithUnit("{retry}"),
	)

	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnRunStarted implements ext.RunStarted.
func (m *MetricsExtension) OnRunStarted(ctx context.Context, _ id.RunID, _ int) error {
	m.runsStarted.Add(ctx, 1)
	return nil
}

// OnRunFinished implements ext.RunFinished.
func (m *MetricsExtension) OnRunFinished(ctx context.Context, _ id.RunID, elapsed time.Duration) error {
	m.runDuration.Record(ctx, elapsed.Seconds())
	return nil
}

// OnTaskCompleted implements ext.TaskCompleted.
func (m *MetricsExtension) OnTaskCompleted(ctx context.Context, t *task.Task, _ *record.Record) error {
	m.tasksCompleted.Add(ctx, 1, kindAttr(t))
	return nil
}

// OnTaskFailed implements ext.TaskFailed.
func (m *MetricsExtension) OnTaskFailed(ctx context.Context, t *task.Task, rec *record.Record) error {
	m.tasksFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(t.Kind)),
		attribute.Bool("cancelled", rec.Result.Cancelled),
	))
	return nil
}

// OnTaskRetrying implements ext.TaskRetrying.
func (m *MetricsExtension) OnTaskRetrying(ctx context.Context, t *task.Task, _ int, _ time.Duration) error {
	m.taskRetries.Add(ctx, 1, kindAttr(t))
	return nil
}

func kindAttr(t *task.Task) metric.AddOption {
	return metric.WithAttributes(attribute.String("kind", string(t.Kind)))
}
