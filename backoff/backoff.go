// Package backoff provides retry delay strategies for task attempts.
// Strategies are stateless and safe for concurrent use.
package backoff

import (
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retry attempt n (1-indexed).
	// Attempt 1 is the first retry after the initial failure.
	Delay(attempt int) time.Duration
}

// Constant waits the same interval before every retry.
type Constant struct {
	Interval time.Duration
}

// NewConstant returns a fixed-interval strategy.
func NewConstant(interval time.Duration) Constant {
	return Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c Constant) Delay(int) time.Duration {
	return c.Interval
}

// Linear grows the delay by Step per attempt: Step * attempt, capped at Max.
type Linear struct {
	Step time.Duration
	Max  time.Duration
}

// NewLinear returns a linearly growing strategy.
func NewLinear(step, maxDelay time.Duration) Linear {
	return Linear{Step: step, Max: maxDelay}
}

// Delay returns Step * attempt, capped at Max when Max is positive.
func (l Linear) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := l.Step * time.Duration(attempt)
	return capped(d, l.Max)
}

// Exponential doubles the delay each attempt: Initial * 2^(attempt-1),
// capped at Max.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential returns a doubling strategy.
func NewExponential(initial, maxDelay time.Duration) Exponential {
	return Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(attempt-1), capped at Max when Max is positive.
func (e Exponential) Delay(attempt int) time.Duration {
	return expDelay(e.Initial, e.Max, attempt)
}

// ExponentialWithJitter draws a uniform delay from [0, base) where base is
// the capped exponential delay. Spreading retries out keeps a burst of
// failures from hammering the external executor in lockstep.
type ExponentialWithJitter struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponentialWithJitter returns a full-jitter exponential strategy.
func NewExponentialWithJitter(initial, maxDelay time.Duration) ExponentialWithJitter {
	return ExponentialWithJitter{Initial: initial, Max: maxDelay}
}

// Delay returns a uniform random duration in [0, expDelay(attempt)).
func (e ExponentialWithJitter) Delay(attempt int) time.Duration {
	base := expDelay(e.Initial, e.Max, attempt)
	if base <= 0 {
		return 0
	}
	return rand.N(base) //nolint:gosec // jitter intentionally uses non-crypto rand
}

// DefaultStrategy is the dispatcher's default: full-jitter exponential,
// 2s initial, 30s cap.
func DefaultStrategy() Strategy {
	return NewExponentialWithJitter(2*time.Second, 30*time.Second)
}

// expDelay doubles initial attempt-1 times, saturating at maxDelay (when
// positive) instead of overflowing.
func expDelay(initial, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d <= 0 {
			// Overflow: saturate.
			if maxDelay > 0 {
				return maxDelay
			}
			return 1<<63 - 1
		}
		if maxDelay > 0 && d >= maxDelay {
			return maxDelay
		}
	}
	return capped(d, maxDelay)
}

func capped(d, maxDelay time.Duration) time.Duration {
	if maxDelay > 0 && d > maxDelay {
		return maxDelay
	}
	return d
}
