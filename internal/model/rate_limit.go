package model

import "time"

// RateLimitDecision is the outcome of a rate-limit check for one request.
// Limit, Remaining, and Reset are surfaced as response headers; Reset marks
// the end of the current fixed window.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter returns the seconds until the window resets, for the
// Retry-After header on rejected requests. Never negative.
func (d RateLimitDecision) RetryAfter(now time.Time) int {
	secs := int(d.Reset.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
