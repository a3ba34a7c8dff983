package engine

import (
	"context"
	"math"
	"time"

	"github.com/rendis/agentflow/pkg/schema"
)

// ValidateRetryPolicy checks backoff names and durations.
func ValidateRetryPolicy(policy *schema.RetryPolicy) error {
	if policy == nil {
		return nil
	}
	switch policy.Backoff {
	case "", schema.BackoffNone, schema.BackoffConstant, schema.BackoffLinear, schema.BackoffExponential:
	default:
		return schema.NewErrorf(schema.ErrCodeValidation,
			"unknown backoff %q: must be one of none, constant, linear, exponential", policy.Backoff)
	}
	if policy.MaxAttempts < 0 {
		return schema.NewErrorf(schema.ErrCodeValidation, "max_attempts must not be negative, got %d", policy.MaxAttempts)
	}
	for field, v := range map[string]string{"delay": policy.Delay, "max_delay": policy.MaxDelay} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return schema.NewErrorf(schema.ErrCodeValidation, "invalid %s %q", field, v)
		}
	}
	return nil
}

// ComputeBackoff calculates the delay before the next attempt. attempt is
// the number of failed attempts so far, starting at 1.
// An empty backoff with a delay set behaves as constant; none never waits.
// The result is capped by max_delay when set and never overflows.
func ComputeBackoff(policy *schema.RetryPolicy, attempt int) time.Duration {
	if policy == nil || policy.Delay == "" {
		return 0
	}

	base, err := time.ParseDuration(policy.Delay)
	if err != nil || base <= 0 {
		return 0
	}

	ceiling := time.Duration(math.MaxInt64)
	if policy.MaxDelay != "" {
		if d, err := time.ParseDuration(policy.MaxDelay); err == nil && d >= 0 {
			ceiling = d
		}
	}

	n := attempt - 1
	if n < 0 {
		n = 0
	}

	var delay time.Duration
	switch policy.Backoff {
	case schema.BackoffExponential:
		// 2^n * base, doubling until the ceiling is reached
		delay = base
		for i := 0; i < n && delay < ceiling; i++ {
			if delay > ceiling/2 {
				delay = ceiling
				break
			}
			delay *= 2
		}
	case schema.BackoffLinear:
		if base > ceiling/time.Duration(n+1) {
			delay = ceiling
		} else {
			delay = base * time.Duration(n+1)
		}
	case schema.BackoffConstant, "":
		delay = base
	default: // none
		return 0
	}

	return min(delay, ceiling)
}

// WaitForBackoff sleeps for the computed backoff duration or returns early if the context is cancelled.
// Returns an error if the context was cancelled during the wait.
func WaitForBackoff(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
