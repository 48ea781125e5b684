package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/executor"
	"github.com/ronfux/LeadGenius/jsonx"
	"github.com/ronfux/LeadGenius/task"
)

// DefaultPlanTimeout bounds the manager call when the caller's context
// carries no deadline.
const DefaultPlanTimeout = 10 * time.Minute

// ModelPlanner asks a manager model to propose research targets and turns
// the proposal into tasks. Entries default to city_search; an entry naming
// a company becomes a company_research task. Entries outside the requested
// states and repeated targets are dropped; the per-state city cap applies
// in proposal order.
type ModelPlanner struct {
	exec executor.Executor
	opts options
}

// NewModel builds a manager-model planner on top of an executor. The
// executor should be configured with the manager model, not the worker one.
func NewModel(exec executor.Executor, opts ...Option) (*ModelPlanner, error) {
	if exec == nil {
		return nil, leadgenius.ErrNoExecutor
	}
	return &ModelPlanner{exec: exec, opts: buildOptions(opts)}, nil
}

var _ Planner = (*ModelPlanner)(nil)

// Plan implements Planner.
func (p *ModelPlanner) Plan(ctx context.Context, req Request) ([]*task.Task, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPlanTimeout)
		defer cancel()
	}

	proposal, err := p.propose(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.build(proposal, req)
}

// proposalEntry is one entry of the manager's response array. An absent
// task_type means city_search; extra keys in the entry are ignored.
type proposalEntry struct {
	TaskType    string `json:"task_type"`
	City        string `json:"city"`
	State       string `json:"state"`
	CompanyName string `json:"company_name"`
}

// propose runs the manager model and decodes its target list.
func (p *ModelPlanner) propose(ctx context.Context, req Request) ([]proposalEntry, error) {
	// The manager call rides the executor contract as a planner-internal
	// invocation. It never enters a dispatch run, so no kind applies.
	t := &task.Task{
		ID:           "research_plan",
		Prompt:       managerPrompt(req),
		Instructions: p.opts.managerInstructions,
	}

	p.opts.logger.Info("plan: asking manager model for target cities",
		slog.String("industry", req.Industry),
		slog.String("states", strings.Join(req.States, ",")),
	)

	res, err := p.exec.Execute(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("plan: manager call: %w", err)
	}
	if res == nil {
		return nil, errors.New("plan: manager call returned no result")
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("plan: manager exited with status %d", res.ExitCode)
	}

	doc, err := jsonx.Extract(res.Output)
	if err != nil {
		return nil, fmt.Errorf("plan: manager output: %w", err)
	}

	var proposal []proposalEntry
	if err := json.Unmarshal(doc, &proposal); err != nil {
		return nil, fmt.Errorf("plan: manager output is not a target list: %w", err)
	}
	return proposal, nil
}

// build filters the proposal and emits validated tasks in proposal order.
func (p *ModelPlanner) build(proposal []proposalEntry, req Request) ([]*task.Task, error) {
	requested := make(map[string]struct{}, len(req.States))
	for _, s := range req.States {
		requested[s] = struct{}{}
	}

	perState := make(map[string]int, len(req.States))
	seen := make(map[string]struct{}, len(proposal))
	tasks := make([]*task.Task, 0, len(proposal))
	for _, entry := range proposal {
		city := strings.TrimSpace(entry.City)
		state := strings.ToUpper(strings.TrimSpace(entry.State))
		if city == "" || state == "" {
			p.opts.logger.Warn("plan: dropped proposal entry missing city or state")
			continue
		}
		if _, ok := requested[state]; !ok {
			p.opts.logger.Warn("plan: dropped target outside requested states",
				slog.String("city", city),
				slog.String("state", state),
			)
			continue
		}

		kind := task.KindCitySearch
		if entry.TaskType != "" {
			k, err := task.ParseKind(entry.TaskType)
			if err != nil {
				p.opts.logger.Warn("plan: dropped proposal entry of unknown type",
					slog.String("task_type", entry.TaskType),
				)
				continue
			}
			kind = k
		}

		var t *task.Task
		var tID string
		switch kind {
		case task.KindCompanyResearch:
			company := strings.TrimSpace(entry.CompanyName)
			if company == "" {
				p.opts.logger.Warn("plan: dropped company entry missing company name",
					slog.String("city", city),
					slog.String("state", state),
				)
				continue
			}
			tID = slugID(company+" "+city, state)
			if _, dup := seen[tID]; dup {
				continue
			}
			var err error
			t, err = buildCompanyTask(company, city, state, req, p.opts.instructions)
			if err != nil {
				return nil, err
			}
		default:
			if req.CitiesPerState > 0 && perState[state] >= req.CitiesPerState {
				continue
			}
			tID = slugID(city, state)
			if _, dup := seen[tID]; dup {
				continue
			}
			var err error
			t, err = buildCityTask(city, state, req, p.opts.instructions)
			if err != nil {
				return nil, err
			}
			perState[state]++
		}

		seen[tID] = struct{}{}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: manager proposed no usable targets", ErrEmptyPlan)
	}

	p.opts.logger.Info("plan: manager plan ready",
		slog.Int("proposed", len(proposal)),
		slog.Int("tasks", len(tasks)),
	)
	return tasks, nil
}
