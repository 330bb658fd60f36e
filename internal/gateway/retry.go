package gateway

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// RetryConfig controls retries of idempotent requests.
type RetryConfig struct {
	MaxAttempts int           // including the first attempt
	BaseDelay   time.Duration // delay before the first retry
	MaxDelay    time.Duration // cap on any single delay
}

// DefaultRetryConfig is 3 attempts with delays around 250ms and 500ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// retry runs op until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last error is returned unchanged.
func retry[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	attempts := max(cfg.MaxAttempts, 1)

	var (
		result T
		err    error
	)
	for attempt := range attempts {
		result, err = op()
		if err == nil || !lexeerr.IsRetryable(err) || attempt == attempts-1 {
			return result, err
		}

		timer := time.NewTimer(backoff(attempt, cfg.BaseDelay, cfg.MaxDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, err
		case <-timer.C:
		}
	}
	return result, err
}

// backoff doubles per attempt and adds jitter in [delay/2, delay).
func backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	delay := base << attempt
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: jitter needs no cryptographic randomness
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
