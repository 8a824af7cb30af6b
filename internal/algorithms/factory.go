package algorithms

import "time"

// BackoffType selects the idle backoff algorithm.
type BackoffType int

const (
	// BackoffExponential doubles the park duration every round (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered randomises the exponential delay so that many waiters parked at the
	// same time do not all wake together.
	BackoffJittered
	// BackoffNone never parks; the waiter only yields the processor between rounds.
	BackoffNone
)

// NewBackoffStrategy creates a backoff strategy of the given type.
// jitterFactor is only used by BackoffJittered and is clamped to [0, 1].
func NewBackoffStrategy(
	backoffType BackoffType,
	initialDelay, maxDelay time.Duration,
	jitterFactor float64,
) BackoffStrategy {
	switch backoffType {
	case BackoffJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)

	case BackoffNone:
		return noBackoff{}

	default:
		return newExponentialBackoff(initialDelay, maxDelay)
	}
}
