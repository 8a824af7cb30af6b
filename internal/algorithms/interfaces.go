package algorithms

import "time"

// BackoffStrategy decides how long an assisted waiter parks after repeated rounds in which
// it found nothing to run. Implementations must be safe for concurrent use: one strategy is
// shared by every waiter on a pool.
type BackoffStrategy interface {
	// NextDelay returns the park duration after idleRounds consecutive empty rounds
	// (0-indexed: 0 = the first round that backs off).
	NextDelay(idleRounds int) time.Duration
}
