package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ronfux/LeadGenius/aggregate"
	"github.com/ronfux/LeadGenius/plan"
)

// Target is one research profile: what to look for and where. One file per
// target, e.g. targets/plumbing.yaml.
type Target struct {
	Industry       string   `yaml:"industry"`
	SearchTerms    []string `yaml:"search_terms,omitempty"`
	States         []string `yaml:"states,omitempty"`
	CitiesPerState int      `yaml:"cities_per_state,omitempty"`
	DataFields     []string `yaml:"data_fields,omitempty"`
}

// LoadTarget reads and validates a target profile. A missing file is
// reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func LoadTarget(path string) (Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Target{}, fmt.Errorf("config: read target: %w", err)
	}

	var t Target
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Target{}, fmt.Errorf("config: parse target %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Target{}, fmt.Errorf("config: target %s: %w", path, err)
	}
	return t, nil
}

// Validate reports the first problem in the profile. State codes and search
// terms are checked at plan time; this catches what must be known up front.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Industry) == "" {
		return ErrNoIndustry
	}
	if t.CitiesPerState < 0 {
		return ErrNegativeCityCap
	}
	if len(t.DataFields) > 0 && !slices.Contains(t.DataFields, aggregate.NameField) {
		return ErrSchemaMissingName
	}
	return nil
}

// Request converts the profile into a planning request. Empty fields keep
// their planning-time defaults.
func (t Target) Request() plan.Request {
	return plan.Request{
		Industry:       t.Industry,
		States:         t.States,
		SearchTerms:    t.SearchTerms,
		DataFields:     t.DataFields,
		CitiesPerState: t.CitiesPerState,
	}
}

// Schema returns the aggregation column schema for this target.
func (t Target) Schema() []string {
	if len(t.DataFields) == 0 {
		return plan.DefaultDataFields()
	}
	return append([]string(nil), t.DataFields...)
}

// StarterTarget returns the template written by the init command.
func StarterTarget(industry string) Target {
	name := strings.ToLower(strings.TrimSpace(industry))
	return Target{
		Industry: industry,
		SearchTerms: []string{
			name,
			name + " company",
			name + " services",
			name + " provider",
		},
		States:         []string{"TX"},
		CitiesPerState: 5,
		DataFields:     plan.DefaultDataFields(),
	}
}

// SaveTarget writes a target profile, creating parent directories.
func SaveTarget(path string, t Target) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create target directory: %w", err)
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("config: marshal target: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write target %s: %w", path, err)
	}
	return nil
}
