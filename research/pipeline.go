// Package research wires the full pipeline behind the CLI: plan the task
// sequence, dispatch it, aggregate stored records, export the dataset, and
// report. The library layers stay independently usable; this package only
// composes them from loaded configuration.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ronfux/LeadGenius/aggregate"
	"github.com/ronfux/LeadGenius/config"
	"github.com/ronfux/LeadGenius/dispatch"
	"github.com/ronfux/LeadGenius/executor"
	"github.com/ronfux/LeadGenius/ext"
	"github.com/ronfux/LeadGenius/plan"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/report"
	"github.com/ronfux/LeadGenius/store"
	"github.com/ronfux/LeadGenius/task"
)

// ErrNoRecords means the store holds nothing to aggregate.
var ErrNoRecords = errors.New("research: no stored records to aggregate")

// Dataset export artifacts, written into the aggregated directory.
const (
	DatasetJSONFile = "businesses.json"
	DatasetCSVFile  = "businesses.csv"
	SummaryFile     = "run_summary.json"
)

// Pipeline runs plan, dispatch, aggregate, export, report as one unit.
type Pipeline struct {
	settings config.Settings
	target   config.Target
	logger   *slog.Logger

	exec       executor.Executor
	planner    plan.Planner
	store      record.Store
	ownsStore  bool
	staticPlan bool
	limit      int
	exts       []ext.Extension
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithExecutor overrides the worker executor built from settings.
func WithExecutor(e executor.Executor) Option {
	return func(p *Pipeline) { p.exec = e }
}

// WithPlanner overrides the planner built from settings.
func WithPlanner(pl plan.Planner) Option {
	return func(p *Pipeline) { p.planner = pl }
}

// WithStaticPlan selects the table-driven planner instead of the manager
// model. Ignored when WithPlanner is given.
func WithStaticPlan() Option {
	return func(p *Pipeline) { p.staticPlan = true }
}

// WithStore overrides the record store built from settings. The caller
// keeps ownership; the pipeline will not close it.
func WithStore(st record.Store) Option {
	return func(p *Pipeline) { p.store = st }
}

// WithLimit caps the number of planned tasks that dispatch. Zero means no
// cap.
func WithLimit(n int) Option {
	return func(p *Pipeline) { p.limit = n }
}

// WithExtensions registers extra run lifecycle extensions alongside the
// built-in progress logger.
func WithExtensions(exts ...ext.Extension) Option {
	return func(p *Pipeline) { p.exts = append(p.exts, exts...) }
}

// New builds a pipeline from loaded configuration.
func New(settings config.Settings, target config.Target, opts ...Option) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		settings: settings,
		target:   target,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.limit < 0 {
		return nil, errors.New("research: limit must not be negative")
	}
	return p, nil
}

// NewWorkerExecutor builds the subprocess executor research tasks run on.
func NewWorkerExecutor(s config.Settings, logger *slog.Logger) *executor.CLI {
	return executor.NewCLI(
		executor.WithBinary(s.Executor.Binary),
		executor.WithModel(s.Executor.WorkerModel),
		executor.WithWebSearch(s.Executor.WebSearch),
		executor.WithLogger(logger),
	)
}

// NewManagerExecutor builds the subprocess executor for planning calls.
// Planning synthesizes from the model's own knowledge, so web search stays
// off regardless of the worker setting.
func NewManagerExecutor(s config.Settings, logger *slog.Logger) *executor.CLI {
	return executor.NewCLI(
		executor.WithBinary(s.Executor.Binary),
		executor.WithModel(s.Executor.ManagerModel),
		executor.WithLogger(logger),
	)
}

// Run executes the whole pipeline. Task failures never fail the run; the
// returned error is reserved for configuration, planning, and aggregation
// problems. When an error follows dispatch, the summary still carries the
// dispatch-side counts gathered so far.
func (p *Pipeline) Run(ctx context.Context) (report.Summary, error) {
	start := time.Now()

	if err := p.ensureStore(ctx); err != nil {
		return report.Summary{}, err
	}
	defer p.closeStore()

	tasks, err := p.planTasks(ctx)
	if err != nil {
		return report.Summary{}, err
	}

	records, err := p.dispatchTasks(ctx, tasks)
	if err != nil {
		return report.Summary{}, err
	}

	summary := report.FromRecords(records)
	summary.Elapsed = time.Since(start)

	// An interrupt stops launches, not bookkeeping. Once dispatch has
	// resolved every task, aggregation and export run to completion even
	// when the run context is already cancelled.
	if err := p.aggregateInto(context.WithoutCancel(ctx), &summary, records); err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(start)
	if err := p.writeSummary(summary); err != nil {
		return summary, err
	}

	p.logger.Info("research run complete", slog.String("summary", summary.String()))
	return summary, nil
}

// AggregateStored re-aggregates previously stored records without running
// any tasks.
func (p *Pipeline) AggregateStored(ctx context.Context) (report.Summary, error) {
	start := time.Now()

	if err := p.ensureStore(ctx); err != nil {
		return report.Summary{}, err
	}
	defer p.closeStore()

	records, err := p.store.List(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("research: list records: %w", err)
	}
	if len(records) == 0 {
		return report.Summary{}, ErrNoRecords
	}

	summary := report.FromRecords(records)
	if err := p.aggregateInto(ctx, &summary, records); err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(start)
	if err := p.writeSummary(summary); err != nil {
		return summary, err
	}

	p.logger.Info("aggregation complete", slog.String("summary", summary.String()))
	return summary, nil
}

// ensureStore opens the configured backend unless one was injected.
func (p *Pipeline) ensureStore(ctx context.Context) error {
	if p.store != nil {
		return nil
	}
	st, err := store.Open(ctx, p.settings.StoreConfig())
	if err != nil {
		return fmt.Errorf("research: open store: %w", err)
	}
	p.store = st
	p.ownsStore = true
	return nil
}

func (p *Pipeline) closeStore() {
	if !p.ownsStore {
		return
	}
	if err := p.store.Close(); err != nil {
		p.logger.Error("research: close store failed", slog.String("error", err.Error()))
	}
	p.store = nil
	p.ownsStore = false
}

// planTasks resolves the planner, plans the run, and applies the limit.
func (p *Pipeline) planTasks(ctx context.Context) ([]*task.Task, error) {
	planner := p.planner
	if planner == nil {
		var err error
		planner, err = p.buildPlanner()
		if err != nil {
			return nil, err
		}
	}

	tasks, err := planner.Plan(ctx, p.target.Request())
	if err != nil {
		return nil, err
	}

	if p.limit > 0 && len(tasks) > p.limit {
		p.logger.Info("plan truncated",
			slog.Int("planned", len(tasks)),
			slog.Int("limit", p.limit),
		)
		tasks = tasks[:p.limit]
	}
	return tasks, nil
}

func (p *Pipeline) buildPlanner() (plan.Planner, error) {
	opts := []plan.Option{plan.WithLogger(p.logger)}
	if instr := p.loadInstructions("city_search"); instr != "" {
		opts = append(opts, plan.WithInstructions(instr))
	}

	if p.staticPlan {
		return plan.NewStatic(opts...), nil
	}

	if instr := p.loadInstructions("manager"); instr != "" {
		opts = append(opts, plan.WithManagerInstructions(instr))
	}
	mgr := NewManagerExecutor(p.settings, p.logger)
	return plan.NewModel(mgr, opts...)
}

// loadInstructions reads a standing-procedure file; absent files simply
// mean no instructions.
func (p *Pipeline) loadInstructions(role string) string {
	path := p.settings.Paths.InstructionsFile(role)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("research: instructions unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		return ""
	}
	return string(data)
}

// dispatchTasks runs the task sequence through a dispatcher wired from
// settings.
func (p *Pipeline) dispatchTasks(ctx context.Context, tasks []*task.Task) ([]*record.Record, error) {
	cfg, err := p.settings.DispatchConfig()
	if err != nil {
		return nil, err
	}

	exec := p.exec
	if exec == nil {
		exec = NewWorkerExecutor(p.settings, p.logger)
	}

	exts := append([]ext.Extension{ext.NewProgress(p.logger)}, p.exts...)
	d, err := dispatch.New(exec, p.store,
		dispatch.WithConfig(cfg),
		dispatch.WithLogger(p.logger),
		dispatch.WithExtensions(exts...),
	)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, tasks)
}

// aggregateInto aggregates records, exports the dataset, and fills the
// dataset-side counts of the summary.
func (p *Pipeline) aggregateInto(ctx context.Context, summary *report.Summary, records []*record.Record) error {
	agg, err := aggregate.New(p.target.Schema(), aggregate.WithLogger(p.logger))
	if err != nil {
		return err
	}

	ds, err := agg.Aggregate(ctx, records)
	if err != nil {
		return err
	}
	summary.ApplyDataset(ds.Stats)

	return p.exportDataset(ds)
}

// exportDataset writes businesses.json and businesses.csv.
func (p *Pipeline) exportDataset(ds *aggregate.Dataset) error {
	dir := p.settings.Paths.AggregatedDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("research: create aggregated directory: %w", err)
	}

	jsonPath := filepath.Join(dir, DatasetJSONFile)
	jf, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("research: create %s: %w", jsonPath, err)
	}
	if err := aggregate.WriteJSON(jf, ds); err != nil {
		jf.Close()
		return err
	}
	if err := jf.Close(); err != nil {
		return fmt.Errorf("research: close %s: %w", jsonPath, err)
	}

	csvPath := filepath.Join(dir, DatasetCSVFile)
	cf, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("research: create %s: %w", csvPath, err)
	}
	if err := aggregate.WriteCSV(cf, ds); err != nil {
		cf.Close()
		return err
	}
	if err := cf.Close(); err != nil {
		return fmt.Errorf("research: close %s: %w", csvPath, err)
	}

	p.logger.Info("dataset exported",
		slog.String("json", jsonPath),
		slog.String("csv", csvPath),
		slog.Int("businesses", len(ds.Businesses)),
	)
	return nil
}

// writeSummary writes run_summary.json next to the dataset exports.
func (p *Pipeline) writeSummary(summary report.Summary) error {
	dir := p.settings.Paths.AggregatedDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("research: create aggregated directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("research: marshal summary: %w", err)
	}

	path := filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("research: write %s: %w", path, err)
	}
	return nil
}
