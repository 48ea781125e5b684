package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/backoff"
	"github.com/ronfux/LeadGenius/executor"
	"github.com/ronfux/LeadGenius/ext"
	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/jsonx"
	"github.com/ronfux/LeadGenius/middleware"
	"github.com/ronfux/LeadGenius/observability"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/task"
)

// Dispatcher runs task lists against an executor with bounded concurrency,
// spaced launches, per-attempt timeouts, and retries. Construct with New;
// a Dispatcher is safe for concurrent Runs, though runs share the store.
type Dispatcher struct {
	exec   executor.Executor
	store  record.Store
	cfg    leadgenius.Config
	logger *slog.Logger

	exts []ext.Extension
	mws  []middleware.Middleware

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	registry *ext.Registry
	chain    middleware.Middleware
}

// New builds a Dispatcher around an executor and a record store.
func New(exec executor.Executor, st record.Store, opts ...Option) (*Dispatcher, error) {
	if exec == nil {
		return nil, leadgenius.ErrNoExecutor
	}
	if st == nil {
		return nil, leadgenius.ErrNoStore
	}

	d := &Dispatcher{
		exec:   exec,
		store:  st,
		cfg:    leadgenius.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	if d.cfg.RetryBackoff == nil {
		d.cfg.RetryBackoff = backoff.DefaultStrategy()
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw middleware.Middleware
	if d.tracerProvider != nil {
		tracer := d.tracerProvider.Tracer("github.com/ronfux/LeadGenius")
		tracingMw = middleware.TracingWithTracer(tracer)
	} else {
		tracingMw = middleware.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw middleware.Middleware
	if d.meterProvider != nil {
		meter := d.meterProvider.Meter("github.com/ronfux/LeadGenius")
		metricsMw = middleware.MetricsWithMeter(meter)
	} else {
		metricsMw = middleware.Metrics()
	}

	// Register the lifecycle metrics extension.
	var obsExt *observability.MetricsExtension
	if d.meterProvider != nil {
		meter := d.meterProvider.Meter("github.com/ronfux/LeadGenius/observability")
		obsExt = observability.NewMetricsExtensionWithMeter(meter)
	} else {
		obsExt = observability.NewMetricsExtension()
	}

	d.registry = ext.NewRegistry(d.logger)
	d.registry.Register(obsExt)
	for _, e := range d.exts {
		d.registry.Register(e)
	}

	// Attempt middleware stack, outermost first. User middleware runs
	// innermost, directly around the executor call.
	stack := []middleware.Middleware{
		middleware.Recover(d.logger),
		tracingMw,
		metricsMw,
		middleware.Logging(d.logger),
		middleware.Timeout(d.cfg.TaskTimeout),
	}
	stack = append(stack, d.mws...)
	d.chain = middleware.Chain(stack...)

	return d, nil
}

// Config returns the dispatcher's effective configuration.
func (d *Dispatcher) Config() leadgenius.Config { return d.cfg }

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }

// Store returns the record store the dispatcher writes to.
func (d *Dispatcher) Store() record.Store { return d.store }

// Extensions returns all registered extensions, built-ins included.
func (d *Dispatcher) Extensions() []ext.Extension { return d.registry.Extensions() }

// Run dispatches every task and blocks until each has a resolved record.
// The returned slice is parallel to tasks (results[i] belongs to tasks[i]).
//
// Cancelling ctx stops new launches and new attempts. Attempts already in
// flight run to completion or to their own timeout; their outcomes are
// recorded as usual. Tasks that never launched resolve to cancelled failure
// records. Run returns a record for every task even on cancellation; the
// only errors it returns are task list validation failures.
func (d *Dispatcher) Run(ctx context.Context, tasks []*task.Task) ([]*record.Record, error) {
	if err := task.ValidateList(tasks); err != nil {
		return nil, err
	}

	runID := id.NewRunID()
	runCtx := WithRunID(ctx, runID)
	start := time.Now()

	d.logger.Info("run started",
		slog.String("run_id", runID.String()),
		slog.Int("tasks", len(tasks)),
		slog.Int("max_concurrency", d.cfg.MaxConcurrency),
		slog.Duration("spawn_delay", d.cfg.SpawnDelay),
	)
	d.registry.EmitRunStarted(runCtx, runID, len(tasks))

	results := make([]*record.Record, len(tasks))
	sem := make(chan struct{}, d.cfg.MaxConcurrency)
	// rate.Every(0) is rate.Inf, so a zero SpawnDelay never waits.
	limiter := rate.NewLimiter(rate.Every(d.cfg.SpawnDelay), 1)

	var wg sync.WaitGroup
	launched := 0

	for i, t := range tasks {
		// Take the concurrency slot before spacing the launch. Waiting on
		// the limiter while holding the slot keeps the minimum gap between
		// real launches; the other order would let tasks queued on capacity
		// launch in a burst as slots free up.
		if !d.acquireSlot(runCtx, sem) {
			break
		}
		if err := limiter.Wait(runCtx); err != nil {
			<-sem
			break
		}

		wg.Add(1)
		launched = i + 1
		go func(seq int, t *task.Task) {
			defer wg.Done()
			defer func() { <-sem }()
			d.runTask(runCtx, t, seq, runID, results)
		}(i, t)
	}

	// Tasks the cancellation cut off before launch still resolve.
	for i := launched; i < len(tasks); i++ {
		t := tasks[i]
		rec := &record.Record{
			ID:        id.NewRecordID(),
			RunID:     runID,
			TaskID:    t.ID,
			Seq:       i,
			Timestamp: time.Now().UTC(),
			Result:    record.CancelledFailure("cancelled before launch", 0),
		}
		d.saveRecord(runCtx, rec)
		results[i] = rec
		d.registry.EmitTaskFailed(runCtx, t, rec)
	}

	wg.Wait()

	elapsed := time.Since(start)
	d.registry.EmitRunFinished(runCtx, runID, elapsed)
	d.logger.Info("run finished",
		slog.String("run_id", runID.String()),
		slog.Int("tasks", len(tasks)),
		slog.Duration("elapsed", elapsed),
	)

	return results, nil
}

// acquireSlot blocks until a concurrency slot frees or the run is
// cancelled. Reports whether the slot was taken.
func (d *Dispatcher) acquireSlot(ctx context.Context, sem chan struct{}) bool {
	select {
	case sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// runTask drives one task to a resolved, persisted record.
func (d *Dispatcher) runTask(runCtx context.Context, t *task.Task, seq int, runID id.RunID, results []*record.Record) {
	d.registry.EmitTaskLaunched(runCtx, t, seq)

	start := time.Now()
	res := d.attemptLoop(runCtx, t)

	rec := &record.Record{
		ID:        id.NewRecordID(),
		RunID:     runID,
		TaskID:    t.ID,
		Seq:       seq,
		Timestamp: time.Now().UTC(),
		Elapsed:   time.Since(start),
		Result:    res,
	}
	d.saveRecord(runCtx, rec)
	// Each worker writes only its own index; wg.Wait orders the writes
	// before Run returns.
	results[seq] = rec

	if res.Success() {
		d.registry.EmitTaskCompleted(runCtx, t, rec)
	} else {
		d.registry.EmitTaskFailed(runCtx, t, rec)
	}
}

// attemptLoop runs attempts with backoff until success, attempt
// exhaustion, or run cancellation between attempts.
func (d *Dispatcher) attemptLoop(runCtx context.Context, t *task.Task) record.Result {
	maxAttempts := d.cfg.MaxRetries + 1

	var reason string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if runCtx.Err() != nil {
			return record.CancelledFailure(cancelReason(reason), attempt-1)
		}

		output, err := d.attempt(runCtx, t, attempt)
		if err == nil {
			return record.Success(output, attempt)
		}
		reason = err.Error()

		if attempt == maxAttempts {
			break
		}

		delay := d.cfg.RetryBackoff.Delay(attempt)
		d.registry.EmitTaskRetrying(runCtx, t, attempt, delay)
		d.logger.Warn("attempt failed, retrying",
			slog.String("task_id", t.ID),
			slog.Int("attempt", attempt),
			slog.Duration("wait", delay),
			slog.String("error", reason),
		)

		select {
		case <-time.After(delay):
		case <-runCtx.Done():
			return record.CancelledFailure(cancelReason(reason), attempt)
		}
	}

	return record.Failure(reason, maxAttempts)
}

// attempt executes the middleware chain around one executor invocation and
// classifies the outcome. A nil error means output holds a usable document.
func (d *Dispatcher) attempt(runCtx context.Context, t *task.Task, n int) (string, error) {
	// Run cancellation must not tear down an attempt already in flight; the
	// Timeout middleware supplies the attempt's own deadline.
	ctx := middleware.WithAttempt(context.WithoutCancel(runCtx), n)

	var res *executor.Result
	terminal := func(ctx context.Context) error {
		var err error
		res, err = d.exec.Execute(ctx, t)
		return err
	}

	if err := d.chain(ctx, t, terminal); err != nil {
		return "", err
	}
	if res == nil {
		return "", errors.New("executor returned no result")
	}
	if res.ExitCode != 0 {
		if line := firstLine(res.Stderr); line != "" {
			return "", fmt.Errorf("exit status %d: %s", res.ExitCode, line)
		}
		return "", fmt.Errorf("exit status %d", res.ExitCode)
	}
	if strings.TrimSpace(res.Output) == "" {
		return "", errors.New("empty output")
	}
	if _, err := jsonx.Extract(res.Output); err != nil {
		return "", fmt.Errorf("unusable output: %w", err)
	}
	return res.Output, nil
}

// saveRecord persists a resolved record. Cancelled runs still record every
// task, so the write itself never uses the run's cancellation.
func (d *Dispatcher) saveRecord(runCtx context.Context, rec *record.Record) {
	ctx := context.WithoutCancel(runCtx)
	if err := d.store.Save(ctx, rec); err != nil {
		d.logger.Error("save record failed",
			slog.String("task_id", rec.TaskID),
			slog.String("record_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// cancelReason describes a cancellation cut, carrying the last attempt
// failure when one happened before the cut.
func cancelReason(lastErr string) string {
	if lastErr == "" {
		return "cancelled before first attempt"
	}
	return "cancelled: " + lastErr
}

// firstLine trims s and returns everything before the first newline.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
