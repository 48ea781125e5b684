// Package plan turns a research request into a dispatchable task sequence.
//
// Two planners are provided. StaticPlanner walks a built-in state to
// major-cities table and needs no model call. ModelPlanner asks a manager
// model to propose research targets and filters the proposal; entries
// default to city_search, and an entry naming a company yields a
// company_research task instead. Tasks carry deterministic IDs derived
// from their target, so re-running a request overwrites prior records
// instead of duplicating them.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ronfux/LeadGenius/task"
)

var (
	ErrNoIndustry     = errors.New("plan: industry required")
	ErrNoStates       = errors.New("plan: at least one state required")
	ErrUnknownState   = errors.New("plan: unknown state code")
	ErrInvalidCityCap = errors.New("plan: cities per state must not be negative")

	// ErrEmptyPlan means planning finished without producing a single task.
	ErrEmptyPlan = errors.New("plan: no tasks produced")
)

// Planner produces the task sequence for one research run.
type Planner interface {
	Plan(ctx context.Context, req Request) ([]*task.Task, error)
}

// Request describes one research run to plan.
type Request struct {
	// Industry is the business vertical to research, e.g. "Plumbing".
	Industry string

	// States lists USPS state codes to cover, in plan order.
	States []string

	// SearchTerms are the query phrasings workers should use. Defaults to
	// the lowercased industry.
	SearchTerms []string

	// DataFields is the column schema workers should fill. Defaults to
	// DefaultDataFields.
	DataFields []string

	// CitiesPerState caps how many cities each state contributes. Zero
	// means no cap.
	CitiesPerState int
}

// DefaultDataFields is the column schema used when a request does not name
// its own.
func DefaultDataFields() []string {
	return []string{"company_name", "address", "phone", "website", "email"}
}

// normalized returns a validated copy with codes upper-cased, duplicate
// states dropped, and empty fields filled with their defaults.
func (r Request) normalized() (Request, error) {
	r.Industry = strings.TrimSpace(r.Industry)
	if r.Industry == "" {
		return r, ErrNoIndustry
	}
	if r.CitiesPerState < 0 {
		return r, ErrInvalidCityCap
	}

	states := make([]string, 0, len(r.States))
	seen := make(map[string]struct{}, len(r.States))
	for _, s := range r.States {
		code := strings.ToUpper(strings.TrimSpace(s))
		if code == "" {
			continue
		}
		if !ValidState(code) {
			return r, fmt.Errorf("%w: %q", ErrUnknownState, s)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		states = append(states, code)
	}
	if len(states) == 0 {
		return r, ErrNoStates
	}
	r.States = states

	if len(r.SearchTerms) == 0 {
		r.SearchTerms = []string{strings.ToLower(r.Industry)}
	} else {
		r.SearchTerms = append([]string(nil), r.SearchTerms...)
	}
	if len(r.DataFields) == 0 {
		r.DataFields = DefaultDataFields()
	} else {
		r.DataFields = append([]string(nil), r.DataFields...)
	}
	return r, nil
}

// Option configures a planner.
type Option func(*options)

type options struct {
	logger              *slog.Logger
	instructions        string
	managerInstructions string
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInstructions attaches standing-procedure text to every planned task.
// The executor prepends it to the task prompt.
func WithInstructions(s string) Option {
	return func(o *options) { o.instructions = s }
}

// WithManagerInstructions attaches standing-procedure text to the manager
// call itself. Only ModelPlanner reads it.
func WithManagerInstructions(s string) Option {
	return func(o *options) { o.managerInstructions = s }
}

// slugID derives the deterministic task ID for a city/state pair:
// lower-cased words joined by underscores, "San Antonio"/"TX" becomes
// "san_antonio_tx".
func slugID(city, state string) string {
	words := strings.FieldsFunc(strings.ToLower(city+" "+state), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_")
}

// buildCityTask assembles one validated city_search task.
func buildCityTask(city, state string, req Request, instructions string) (*task.Task, error) {
	payload := task.Payload{
		City:        city,
		State:       state,
		Industry:    req.Industry,
		SearchTerms: req.SearchTerms,
		DataFields:  req.DataFields,
	}

	opts := []task.Option{task.WithPrompt(CitySearchPrompt(payload))}
	if instructions != "" {
		opts = append(opts, task.WithInstructions(instructions))
	}

	t, err := task.New(slugID(city, state), task.KindCitySearch, payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("plan: build task for %s, %s: %w", city, state, err)
	}
	return t, nil
}

// buildCompanyTask assembles one validated company_research task. The ID
// folds the company name in, so one city can carry several company tasks.
func buildCompanyTask(company, city, state string, req Request, instructions string) (*task.Task, error) {
	payload := task.Payload{
		CompanyName: company,
		City:        city,
		State:       state,
		Industry:    req.Industry,
		DataFields:  req.DataFields,
	}

	opts := []task.Option{task.WithPrompt(CompanyResearchPrompt(payload))}
	if instructions != "" {
		opts = append(opts, task.WithInstructions(instructions))
	}

	t, err := task.New(slugID(company+" "+city, state), task.KindCompanyResearch, payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("plan: build task for %s in %s, %s: %w", company, city, state, err)
	}
	return t, nil
}
