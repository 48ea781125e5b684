package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronfux/LeadGenius/plan"
	"github.com/ronfux/LeadGenius/task"
)

func taskIDs(tasks []*task.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestStatic_PlansRequestedStates(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"tx", "CA"},
	})
	require.NoError(t, err)
	require.NoError(t, task.ValidateList(tasks))
	require.Len(t, tasks, 16)

	first := tasks[0]
	assert.Equal(t, "houston_tx", first.ID)
	assert.Equal(t, task.KindCitySearch, first.Kind)
	assert.Equal(t, "Houston", first.Payload.City)
	assert.Equal(t, "TX", first.Payload.State)
	assert.Equal(t, "Plumbing", first.Payload.Industry)
	assert.Equal(t, []string{"plumbing"}, first.Payload.SearchTerms)
	assert.Equal(t, plan.DefaultDataFields(), first.Payload.DataFields)
	assert.Contains(t, first.Prompt, "City: Houston")

	// CA tasks follow the TX block, holding request order.
	assert.Equal(t, "los_angeles_ca", tasks[8].ID)
}

func TestStatic_CapsCitiesPerState(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry:       "Plumbing",
		States:         []string{"TX"},
		CitiesPerState: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"houston_tx", "dallas_tx", "austin_tx"}, taskIDs(tasks))
}

func TestStatic_SlugsMultiWordCities(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"FL", "NC"},
	})
	require.NoError(t, err)

	ids := taskIDs(tasks)
	assert.Contains(t, ids, "st_petersburg_fl")
	assert.Contains(t, ids, "winston_salem_nc")
	assert.Contains(t, ids, "fort_lauderdale_fl")
}

func TestStatic_SkipsStatesOutsideTable(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"VT", "TX"},
	})
	require.NoError(t, err)

	for _, id := range taskIDs(tasks) {
		assert.NotContains(t, id, "_vt")
	}
	assert.Len(t, tasks, 8)
}

func TestStatic_EmptyPlanIsAnError(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))

	_, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"VT", "ME"},
	})
	assert.ErrorIs(t, err, plan.ErrEmptyPlan)
}

func TestStatic_DeduplicatesStates(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"TX", "tx", " TX "},
	})
	require.NoError(t, err)
	assert.Len(t, tasks, 8)
}

func TestStatic_ValidatesRequest(t *testing.T) {
	p := plan.NewStatic(plan.WithLogger(discardLogger()))
	ctx := context.Background()

	_, err := p.Plan(ctx, plan.Request{States: []string{"TX"}})
	assert.ErrorIs(t, err, plan.ErrNoIndustry)

	_, err = p.Plan(ctx, plan.Request{Industry: "Plumbing"})
	assert.ErrorIs(t, err, plan.ErrNoStates)

	_, err = p.Plan(ctx, plan.Request{Industry: "Plumbing", States: []string{"ZZ"}})
	assert.ErrorIs(t, err, plan.ErrUnknownState)

	_, err = p.Plan(ctx, plan.Request{
		Industry:       "Plumbing",
		States:         []string{"TX"},
		CitiesPerState: -1,
	})
	assert.ErrorIs(t, err, plan.ErrInvalidCityCap)
}

func TestStatic_AttachesInstructions(t *testing.T) {
	p := plan.NewStatic(
		plan.WithLogger(discardLogger()),
		plan.WithInstructions("Report only verifiable businesses."),
	)

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry:       "Plumbing",
		States:         []string{"TX"},
		CitiesPerState: 2,
	})
	require.NoError(t, err)

	for _, tk := range tasks {
		assert.Equal(t, "Report only verifiable businesses.", tk.Instructions)
	}
}
