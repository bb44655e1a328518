package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy controls how failed partitions are re-scanned.
//
// Retries happen in rounds: after all partitions of a round have finished,
// the ones that failed with a retryable error are scanned again after a
// backoff delay.
type RetryPolicy struct {
	// MaxAttempts is the total number of scans per partition, first scan
	// included. Values below 1 are treated as 1.
	MaxAttempts int

	// InitialDelay is the wait before the first retry round.
	InitialDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Multiplier scales the delay after every round.
	Multiplier float64

	// Jitter randomizes each delay within [0.8, 1.2) of its nominal value.
	Jitter bool

	// Retryable classifies failures. Defaults to IsRetryable.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns a policy of three attempts with exponential
// backoff starting at 50ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		Retryable:    IsRetryable,
	}
}

// NoRetry returns a policy that scans every partition exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, Retryable: IsRetryable}
}

func (p RetryPolicy) attempts() int {
	return max(p.MaxAttempts, 1)
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return IsRetryable(err)
}

// Delay returns the backoff before retry round n (n >= 1), without jitter.
func (p RetryPolicy) Delay(n int) time.Duration {
	if n <= 0 || p.InitialDelay <= 0 {
		return 0
	}

	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(p.InitialDelay) * math.Pow(mult, float64(n-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

// wait sleeps for the backoff of round n or until ctx is done.
func (p RetryPolicy) wait(ctx context.Context, n int) error {
	delay := p.Delay(n)
	if p.Jitter {
		delay = time.Duration(float64(delay) * (0.8 + 0.4*rand.Float64()))
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
