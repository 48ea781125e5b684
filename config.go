package leadgenius

import (
	"time"

	"github.com/ronfux/LeadGenius/backoff"
)

// Config holds dispatch configuration. Zero values are not usable; start
// from DefaultConfig and override.
type Config struct {
	// MaxConcurrency caps simultaneously in-flight tasks.
	MaxConcurrency int

	// SpawnDelay is the minimum gap between successive task launches,
	// enforced regardless of free capacity. It throttles request rate to
	// the external executor independent of worker count. Zero disables
	// the throttle.
	SpawnDelay time.Duration

	// TaskTimeout bounds a single attempt, not the total across retries.
	// Zero means no attempt deadline.
	TaskTimeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// RetryBackoff yields the delay before each retry attempt. Nil falls
	// back to backoff.DefaultStrategy.
	RetryBackoff backoff.Strategy
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		SpawnDelay:     20 * time.Second,
		TaskTimeout:    10 * time.Minute,
		MaxRetries:     2,
		RetryBackoff:   backoff.DefaultStrategy(),
	}
}

// Validate reports the first configuration-level problem. Configuration
// errors are the only fatal errors in a run.
func (c Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.SpawnDelay < 0 {
		return ErrInvalidSpawnDelay
	}
	if c.TaskTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	return nil
}
