// Package deadletter captures activity messages the consumer could not process and replays them later.
package deadletter

import "time"

// MaxBackoff caps the delay between replays of one entry.
const MaxBackoff = time.Hour

// Backoff returns base * 2^(attempt-1), capped at MaxBackoff. Attempts below 1 get no delay.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}
	shift := uint(attempt - 1)
	if shift >= 62 || base > MaxBackoff>>shift {
		return MaxBackoff
	}
	return base << shift
}
