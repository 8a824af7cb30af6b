package algorithms

import (
	"math/rand/v2"
	"time"
)

const (
	maxShift = 62 // 1<<63 overflows int64
)

// exponentialBackoff parks for initialDelay * 2^idleRounds, capped at maxDelay.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newExponentialBackoff(initialDelay, maxDelay time.Duration) *exponentialBackoff {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

func (eb *exponentialBackoff) NextDelay(idleRounds int) time.Duration {
	return calcExponentialDelay(idleRounds, eb.initialDelay, eb.maxDelay)
}

// jitteredBackoff scales the exponential delay by a random factor in [1-jitter, 1+jitter].
//
// Example with jitterFactor=0.1:
// a base delay of 1ms becomes a random value between 900µs and 1.1ms
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64
}

func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
	}
}

func (jb *jitteredBackoff) NextDelay(idleRounds int) time.Duration {
	if idleRounds < 0 {
		return 0
	}

	baseDelay := calcExponentialDelay(idleRounds, jb.initialDelay, jb.maxDelay)
	// The top-level math/rand/v2 functions are safe for concurrent use.
	multiplier := 1.0 + (rand.Float64()*2-1)*jb.jitterFactor // #nosec G404 -- jitter, not security

	return clamp(time.Duration(float64(baseDelay)*multiplier), 0, jb.maxDelay)
}

type noBackoff struct{}

func (noBackoff) NextDelay(int) time.Duration { return 0 }

func calcExponentialDelay(idleRounds int, initialDelay, maxDelay time.Duration) time.Duration {
	if idleRounds < 0 {
		return 0
	}

	if idleRounds >= maxShift {
		return maxDelay
	}

	// initialDelay << idleRounds > maxDelay, without overflowing.
	if initialDelay > maxDelay>>uint(idleRounds) {
		return maxDelay
	}

	return initialDelay << uint(idleRounds)
}

func clamp[T int | float64 | time.Duration](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
