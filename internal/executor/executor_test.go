package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuccess(t *testing.T) {
	out := Run(context.Background(), "echo hi", Options{})
	assert.True(t, out.Success)
	assert.Contains(t, out.Output, "hi")
}

func TestRunNonZeroExit(t *testing.T) {
	out := Run(context.Background(), "exit 7", Options{})
	require.False(t, out.Success)
	assert.Equal(t, ReasonExit, out.Reason)
	assert.Equal(t, 7, out.ExitCode)
}

func TestRunTimeoutIsKilled(t *testing.T) {
	start := time.Now()
	out := Run(context.Background(), "sleep 5", Options{Timeout: 200 * time.Millisecond, KillGrace: 100 * time.Millisecond})
	elapsed := time.Since(start)

	require.False(t, out.Success)
	assert.Equal(t, ReasonTimeout, out.Reason)
	assert.Less(t, elapsed, 2*time.Second, "timeout must kill promptly, not wait for sleep to finish")
}

func TestRunTimeoutKillsBackgroundedGrandchild(t *testing.T) {
	start := time.Now()
	out := Run(context.Background(), "sleep 30 & wait", Options{Timeout: 300 * time.Millisecond, KillGrace: 200 * time.Millisecond})
	elapsed := time.Since(start)

	require.False(t, out.Success)
	assert.Equal(t, ReasonTimeout, out.Reason)
	assert.Less(t, elapsed, 2*time.Second, "the backgrounded grandchild must die with the process group, not outlive Run")
}

func TestRunCapturesCombinedOutput(t *testing.T) {
	out := Run(context.Background(), "echo out; echo err 1>&2", Options{})
	assert.True(t, out.Success)
	assert.Contains(t, out.Output, "out")
	assert.Contains(t, out.Output, "err")
}

func TestRunTruncatesOversizedOutput(t *testing.T) {
	out := Run(context.Background(), "yes | head -c 100", Options{OutputLimit: 10})
	assert.True(t, out.Success)
	assert.LessOrEqual(t, len(out.Output)-len(truncationMarker), 10)
	assert.True(t, strings.Contains(out.Output, "truncated"))
}

func TestRunWithCancelledContextFails(t *testing.T) {
	// Start does not look at ctx, so the child still launches; Run then
	// sees ctx already done and terminates the process group at once.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := Run(ctx, "echo hi", Options{})
	assert.False(t, out.Success)
}
