package cv

import "time"

// Backoff is an exponential retry policy with a capped delay and a failure
// limit after which retries stop.
type Backoff struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxFailures int
}

// DefaultBackoff returns the autosave retry policy.
func DefaultBackoff() Backoff {
	return Backoff{
		BaseDelay:   2 * time.Second,
		MaxDelay:    time.Minute,
		MaxFailures: 5,
	}
}

// Delay returns the wait before retry number failures (1-based).
func (b Backoff) Delay(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	delay := b.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < failures; i++ {
		delay *= 2
		if b.MaxDelay > 0 && delay >= b.MaxDelay {
			return b.MaxDelay
		}
	}
	if b.MaxDelay > 0 && delay > b.MaxDelay {
		return b.MaxDelay
	}
	return delay
}

// Exhausted reports whether failures reached the retry limit.
func (b Backoff) Exhausted(failures int) bool {
	return b.MaxFailures > 0 && failures >= b.MaxFailures
}
