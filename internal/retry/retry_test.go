package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecideRetriesUntilMaxThenDead(t *testing.T) {
	cases := []struct {
		attempts   int
		maxRetries int
		wantVerdict Verdict
		wantDelay   time.Duration
	}{
		{1, 3, VerdictRetry, 2 * time.Second},
		{2, 3, VerdictRetry, 4 * time.Second},
		{3, 3, VerdictRetry, 8 * time.Second},
		{4, 3, VerdictDead, 0},
	}
	for _, c := range cases {
		got := Decide(c.attempts, c.maxRetries, 2)
		assert.Equal(t, c.wantVerdict, got.Verdict, "attempts=%d", c.attempts)
		if c.wantVerdict == VerdictRetry {
			assert.Equal(t, c.wantDelay, got.Delay)
		}
	}
}

func TestDecideClampsDelay(t *testing.T) {
	got := Decide(1, 5, 0)
	assert.Equal(t, VerdictRetry, got.Verdict)
	assert.Equal(t, time.Second, got.Delay, "delay must clamp to the 1s floor")

	got = Decide(30, 40, 10)
	assert.Equal(t, VerdictRetry, got.Verdict)
	assert.Equal(t, 24*time.Hour, got.Delay, "delay must clamp to the 24h ceiling")
}

func TestDecideDeadBoundary(t *testing.T) {
	// max_retries=3 permits at most 4 total executions: attempts 1..3 retry,
	// attempt 4 is dead.
	for attempts := 1; attempts <= 3; attempts++ {
		assert.Equal(t, VerdictRetry, Decide(attempts, 3, 2).Verdict)
	}
	assert.Equal(t, VerdictDead, Decide(4, 3, 2).Verdict)
}
