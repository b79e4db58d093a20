package relay

import "time"

// MaxAttempts is the hard cap on snapshot fetches per turn. It is the only
// deadline of the poll loop.
const MaxAttempts = 60

// errorBackoff is the pause after a failed fetch before the next attempt.
const errorBackoff = 500 * time.Millisecond

// DelayBefore returns how long to wait before the given zero-based attempt.
func DelayBefore(attempt int) time.Duration {
	switch {
	case attempt <= 0:
		return 0
	case attempt < 10:
		return 500 * time.Millisecond
	case attempt < 30:
		return time.Second
	default:
		return 2 * time.Second
	}
}

// WorstCaseWait is the sum of all scheduled delays for MaxAttempts attempts.
func WorstCaseWait() time.Duration {
	var total time.Duration
	for i := 0; i < MaxAttempts; i++ {
		total += DelayBefore(i)
	}
	return total
}
