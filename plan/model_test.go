package plan_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/executor"
	"github.com/ronfux/LeadGenius/jsonx"
	"github.com/ronfux/LeadGenius/plan"
	"github.com/ronfux/LeadGenius/task"
)

// fakeManager records the tasks it receives and replies with a fixed result.
type fakeManager struct {
	mu    sync.Mutex
	tasks []*task.Task
	res   *executor.Result
	err   error
}

func (f *fakeManager) Execute(_ context.Context, t *task.Task) (*executor.Result, error) {
	f.mu.Lock()
	f.tasks = append(f.tasks, t)
	f.mu.Unlock()
	return f.res, f.err
}

func (f *fakeManager) lastTask(t *testing.T) *task.Task {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.tasks)
	return f.tasks[len(f.tasks)-1]
}

func newModelPlanner(t *testing.T, exec executor.Executor) *plan.ModelPlanner {
	t.Helper()
	p, err := plan.NewModel(exec, plan.WithLogger(discardLogger()))
	require.NoError(t, err)
	return p
}

func TestNewModel_RequiresExecutor(t *testing.T) {
	_, err := plan.NewModel(nil)
	assert.ErrorIs(t, err, leadgenius.ErrNoExecutor)
}

func TestModel_BuildsTasksFromProposal(t *testing.T) {
	mgr := &fakeManager{res: &executor.Result{Output: "Here is the plan:\n```json\n" +
		`[{"city": "Houston", "state": "TX"},
		  {"city": "Dallas", "state": "tx"},
		  {"city": "Miami", "state": "FL"}]` + "\n```\n"}}
	p := newModelPlanner(t, mgr)

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"TX", "FL"},
	})
	require.NoError(t, err)
	require.NoError(t, task.ValidateList(tasks))

	assert.Equal(t, []string{"houston_tx", "dallas_tx", "miami_fl"}, taskIDs(tasks))
	assert.Equal(t, "TX", tasks[1].Payload.State)

	sent := mgr.lastTask(t)
	assert.Equal(t, "research_plan", sent.ID)
	assert.Contains(t, sent.Prompt, "Industry: Plumbing")
	assert.Contains(t, sent.Prompt, "States to research: TX, FL")
	assert.Contains(t, sent.Prompt, "JSON array")
}

func TestModel_SeparatesManagerAndTaskInstructions(t *testing.T) {
	mgr := &fakeManager{res: &executor.Result{Output: `[{"city": "Houston", "state": "TX"}]`}}
	p, err := plan.NewModel(mgr,
		plan.WithLogger(discardLogger()),
		plan.WithInstructions("Report only verifiable businesses."),
		plan.WithManagerInstructions("Prefer metro areas over suburbs."),
	)
	require.NoError(t, err)

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"TX"},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, "Prefer metro areas over suburbs.", mgr.lastTask(t).Instructions)
	assert.Equal(t, "Report only verifiable businesses.", tasks[0].Instructions)
}

func TestModel_FiltersProposal(t *testing.T) {
	mgr := &fakeManager{res: &executor.Result{Output: `[
		{"city": "Houston", "state": "TX"},
		{"city": "Houston", "state": "TX"},
		{"city": "Denver", "state": "CO"},
		{"city": "", "state": "TX"},
		{"city": "Dallas", "state": "TX"},
		{"city": "Austin", "state": "TX"}
	]`}}
	p := newModelPlanner(t, mgr)

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry:       "Plumbing",
		States:         []string{"TX"},
		CitiesPerState: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"houston_tx", "dallas_tx"}, taskIDs(tasks))
}

func TestModel_ProposalEntriesMayCarryExtraKeys(t *testing.T) {
	mgr := &fakeManager{res: &executor.Result{Output: `[
		{"task_id": "houston_tx", "task_type": "city_search", "city": "Houston", "state": "TX", "priority": 1}
	]`}}
	p := newModelPlanner(t, mgr)

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"TX"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"houston_tx"}, taskIDs(tasks))
}

func TestModel_CompanyResearchProposals(t *testing.T) {
	mgr := &fakeManager{res: &executor.Result{Output: `[
		{"city": "Houston", "state": "TX"},
		{"task_type": "company_research", "company_name": "Acme Plumbing", "city": "Houston", "state": "TX"},
		{"city": "Dallas", "state": "TX"},
		{"task_type": "company_research", "company_name": "", "city": "Dallas", "state": "TX"},
		{"task_type": "company_research", "company_name": "Rocky Pipes", "city": "Denver", "state": "CO"},
		{"task_type": "lead_scoring", "city": "Austin", "state": "TX"}
	]`}}
	p := newModelPlanner(t, mgr)

	tasks, err := p.Plan(context.Background(), plan.Request{
		Industry:       "Plumbing",
		States:         []string{"TX"},
		CitiesPerState: 1,
	})
	require.NoError(t, err)
	require.NoError(t, task.ValidateList(tasks))

	// Company entries ride alongside cities without consuming the per-state
	// city cap; entries missing a company name, outside the requested
	// states, or of unknown type are dropped.
	assert.Equal(t, []string{"houston_tx", "acme_plumbing_houston_tx"}, taskIDs(tasks))

	company := tasks[1]
	assert.Equal(t, task.KindCompanyResearch, company.Kind)
	assert.Equal(t, "Acme Plumbing", company.Payload.CompanyName)
	assert.Equal(t, "Houston", company.Payload.City)
	assert.Contains(t, company.Prompt, "Company Name: Acme Plumbing")
}

func TestModel_ManagerFailures(t *testing.T) {
	tests := []struct {
		name    string
		res     *executor.Result
		execErr error
		wantErr string
	}{
		{
			name:    "transport error",
			execErr: errors.New("binary not found"),
			wantErr: "manager call",
		},
		{
			name:    "non-zero exit",
			res:     &executor.Result{ExitCode: 2, Stderr: "quota exceeded"},
			wantErr: "exited with status 2",
		},
		{
			name:    "not a list",
			res:     &executor.Result{Output: `{"city": "Houston", "state": "TX"}`},
			wantErr: "not a target list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newModelPlanner(t, &fakeManager{res: tt.res, err: tt.execErr})

			_, err := p.Plan(context.Background(), plan.Request{
				Industry: "Plumbing",
				States:   []string{"TX"},
			})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestModel_UnusableOutput(t *testing.T) {
	p := newModelPlanner(t, &fakeManager{res: &executor.Result{Output: "I could not find any cities."}})

	_, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"TX"},
	})
	assert.ErrorIs(t, err, jsonx.ErrNoDocument)
}

func TestModel_EmptyProposal(t *testing.T) {
	p := newModelPlanner(t, &fakeManager{res: &executor.Result{Output: `[]`}})

	_, err := p.Plan(context.Background(), plan.Request{
		Industry: "Plumbing",
		States:   []string{"TX"},
	})
	assert.ErrorIs(t, err, plan.ErrEmptyPlan)
}
