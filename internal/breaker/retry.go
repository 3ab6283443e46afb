package breaker

import (
	"math/rand"
	"time"
)

// RetryConfig fixes the exact backoff formula:
// delay_for_attempt(n) = min(base_delay * multiplier^(n-1), max_delay) * jitter,
// jitter in [1.0, 1.1], attempt 0 has zero delay. This is implemented
// directly rather than through a generic backoff library because the
// jitter range is a tested, fixed property, not an implementation detail.
type RetryConfig struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns conventional retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		BaseDelay:         200 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// jitterSource returns a multiplier in [1.0, 1.1], drawn fresh on every
// call so concurrent instances retrying the same provider don't land on
// synchronized delays. Overridden in tests for determinism.
var jitterSource = func() float64 { return 1.0 + rand.Float64()*0.1 }

// DelayForAttempt computes the delay before attempt n (1-indexed; attempt 0
// means "no delay, first try"). It is monotone non-decreasing in n until
// MaxDelay caps it.
func (c RetryConfig) DelayForAttempt(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	multiplier := c.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	delay := float64(c.BaseDelay)
	for i := 1; i < n; i++ {
		delay *= multiplier
	}
	if max := float64(c.MaxDelay); max > 0 && delay > max {
		delay = max
	}
	jitter := jitterSource()
	if jitter < 1.0 {
		jitter = 1.0
	}
	if jitter > 1.1 {
		jitter = 1.1
	}
	return time.Duration(delay * jitter)
}
