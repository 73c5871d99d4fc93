// Package retry implements the pure backoff/DLQ decision function tying
// the Store's failure handling to the worker's retry-vs-dead outcome.
package retry

import "time"

const (
	minDelay = time.Second
	maxDelay = 24 * time.Hour
)

// Verdict is the outcome of a retry decision.
type Verdict int

const (
	VerdictRetry Verdict = iota
	VerdictDead
)

// Decision is the result of Decide: either Retry with a delay, or Dead.
type Decision struct {
	Verdict Verdict
	Delay   time.Duration
}

// Decide maps (attempts after the failure that just occurred, max
// retries, backoff base) to a Retry(delay) or Dead verdict.
//
// attemptsAfterFailure is the post-increment attempt count. The first
// failed attempt (attemptsAfterFailure=1) waits backoffBase^1 seconds.
// A job with maxRetries=3 gets at most 4 total executions.
func Decide(attemptsAfterFailure, maxRetries, backoffBase int) Decision {
	if attemptsAfterFailure > maxRetries {
		return Decision{Verdict: VerdictDead}
	}
	delay := pow(backoffBase, attemptsAfterFailure)
	d := time.Duration(delay) * time.Second
	if d < minDelay {
		d = minDelay
	}
	if d > maxDelay {
		d = maxDelay
	}
	return Decision{Verdict: VerdictRetry, Delay: d}
}

// pow computes base^exp for non-negative integer exponents without
// pulling in math.Pow's float rounding for what must be a clean integer
// number of seconds.
func pow(base, exp int) int64 {
	if base <= 0 {
		base = 1
	}
	result := int64(1)
	b := int64(base)
	for i := 0; i < exp; i++ {
		result *= b
		if result > int64(maxDelay/time.Second) {
			return int64(maxDelay / time.Second)
		}
	}
	return result
}
