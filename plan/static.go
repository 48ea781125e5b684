package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ronfux/LeadGenius/task"
)

// StaticPlanner derives city_search tasks from the built-in state city
// table. No model call, so plans are instant and fully deterministic.
// States outside the table are skipped with a warning.
type StaticPlanner struct {
	opts options
}

// NewStatic builds a table-driven planner.
func NewStatic(opts ...Option) *StaticPlanner {
	return &StaticPlanner{opts: buildOptions(opts)}
}

var _ Planner = (*StaticPlanner)(nil)

// Plan implements Planner.
func (p *StaticPlanner) Plan(_ context.Context, req Request) ([]*task.Task, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}

	var tasks []*task.Task
	for _, state := range req.States {
		cities := MajorCities(state)
		if len(cities) == 0 {
			p.opts.logger.Warn("plan: state not in city table, skipped",
				slog.String("state", state))
			continue
		}
		if req.CitiesPerState > 0 && len(cities) > req.CitiesPerState {
			cities = cities[:req.CitiesPerState]
		}
		for _, city := range cities {
			t, err := buildCityTask(city, state, req, p.opts.instructions)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: city table covers none of %s",
			ErrEmptyPlan, strings.Join(req.States, ", "))
	}

	p.opts.logger.Info("plan: static plan ready",
		slog.String("industry", req.Industry),
		slog.Int("tasks", len(tasks)),
	)
	return tasks, nil
}
