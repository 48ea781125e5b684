package task

import (
	"errors"
	"fmt"

	leadgenius "github.com/ronfux/LeadGenius"
)

// Kind distinguishes task shapes. The set is closed; payload requirements
// depend on the kind.
type Kind string

const (
	// KindCitySearch is a broad search for businesses of one industry in
	// one city.
	KindCitySearch Kind = "city_search"
	// KindCompanyResearch is deep research on a single named company.
	KindCompanyResearch Kind = "company_research"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCitySearch, KindCompanyResearch:
		return true
	}
	return false
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("task: unknown kind %q", s)
	}
	return k, nil
}

var (
	ErrEmptyID        = errors.New("task: empty id")
	ErrUnknownKind    = errors.New("task: unknown kind")
	ErrEmptyPrompt    = errors.New("task: empty prompt")
	ErrMissingCity    = errors.New("task: payload missing city")
	ErrMissingState   = errors.New("task: payload missing state")
	ErrMissingCompany = errors.New("task: payload missing company name")
)

// Payload is the structured descriptor consumed by the executor and, for
// provenance, by the aggregator. Which fields are required depends on the
// task kind; unused fields stay empty.
type Payload struct {
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
	SearchTerms []string `json:"search_terms,omitempty"`
	DataFields  []string `json:"data_fields,omitempty"`
}

// Task is one independently executable unit of research work. Construct
// with New; treat as immutable afterwards.
type Task struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"kind"`
	Payload Payload `json:"payload"`

	// Prompt is the rendered model prompt for this task.
	Prompt string `json:"prompt"`

	// Instructions is optional standing-procedure text the executor
	// prepends to the prompt.
	Instructions string `json:"instructions,omitempty"`
}

// Option configures optional Task fields at construction.
type Option func(*Task)

// WithPrompt sets the rendered model prompt.
func WithPrompt(p string) Option {
	return func(t *Task) { t.Prompt = p }
}

// WithInstructions sets standing-procedure text prepended by the executor.
func WithInstructions(s string) Option {
	return func(t *Task) { t.Instructions = s }
}

// New builds a validated Task. Kind-specific payload requirements:
// city_search needs city and state; company_research needs a company name
// and city/state for provenance.
func New(id string, kind Kind, p Payload, opts ...Option) (*Task, error) {
	t := &Task{ID: id, Kind: kind, Payload: p}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Task) validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	if t.Prompt == "" {
		return ErrEmptyPrompt
	}

	switch t.Kind {
	case KindCitySearch:
		if t.Payload.City == "" {
			return ErrMissingCity
		}
		if t.Payload.State == "" {
			return ErrMissingState
		}
	case KindCompanyResearch:
		if t.Payload.CompanyName == "" {
			return ErrMissingCompany
		}
		if t.Payload.City == "" {
			return ErrMissingCity
		}
		if t.Payload.State == "" {
			return ErrMissingState
		}
	}
	return nil
}

// ValidateList checks a task sequence for dispatch: every task well formed
// and IDs unique within the run. Returns the offending task ID on failure.
func ValidateList(tasks []*Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if t == nil {
			return errors.New("task: nil task in list")
		}
		if err := t.validate(); err != nil {
			return fmt.Errorf("task %q: %w", t.ID, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("task %q: %w", t.ID, leadgenius.ErrDuplicateTaskID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
