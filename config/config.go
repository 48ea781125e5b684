// Package config loads runtime settings and per-target research profiles
// from YAML.
//
// Settings covers how a run executes: parallelism, retries, timeouts, the
// executor binary and models, paths, and the record store backend. Target
// covers what to research: industry, search terms, states, and the
// data-field schema. Both load over documented defaults and validate on
// load; configuration problems are the only fatal errors in a run.
//
// Nothing here is ambient. Loaded values are passed into constructors
// explicitly.
package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoBinary        = errors.New("config: executor binary required")
	ErrNoModel         = errors.New("config: manager and worker models required")
	ErrNoOutputDir     = errors.New("config: output directory required")
	ErrUnknownBackoff  = errors.New("config: unknown backoff kind")
	ErrUnknownStore    = errors.New("config: unknown store backend")
	ErrUnknownLogLevel = errors.New("config: unknown log level")

	ErrNoIndustry        = errors.New("config: target industry required")
	ErrNegativeCityCap   = errors.New("config: cities_per_state must not be negative")
	ErrSchemaMissingName = errors.New("config: data_fields must include company_name")
)

// Duration wraps time.Duration for YAML fields. It accepts Go duration
// strings ("20s", "1m30s") and bare numbers, which are read as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs float64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"20s\" or a number of seconds: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
