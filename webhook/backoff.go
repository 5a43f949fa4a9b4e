package webhook

import "time"

const (
	// BaseDelay is the delay before the first retry
	BaseDelay = 60 * time.Second

	// MaxDelay saturates the backoff curve
	MaxDelay = 3600 * time.Second
)

/* Backoff returns the delay before the next retry given the number of
 * attempts already made: min(BaseDelay * 2^attempt, MaxDelay).
 * Monotonically non-decreasing and saturating at MaxDelay.
 */
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// 2^7 already exceeds MaxDelay/BaseDelay; clamp to avoid shift overflow
	if attempt > 7 {
		return MaxDelay
	}

	delay := BaseDelay * (1 << attempt)
	if delay > MaxDelay {
		delay = MaxDelay
	}
	return delay
}
