package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuectl/internal/clock"
	"queuectl/internal/config"
	"queuectl/internal/logging"
	"queuectl/internal/model"
	"queuectl/internal/store"
)

func newHarness(t *testing.T) (*store.Store, *config.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "queuectl.db"), clock.Real())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg, err := config.Open(filepath.Join(dir, "queuectl_config.json"))
	require.NoError(t, err)
	require.NoError(t, cfg.Set("poll-interval-seconds", "0"))
	require.NoError(t, cfg.Set("job-timeout-seconds", "5"))
	require.NoError(t, cfg.Set("lease-ttl-seconds", "5"))
	require.NoError(t, cfg.Set("grace-window-seconds", "1"))

	return st, cfg
}

func waitForState(t *testing.T, st *store.Store, id string, want model.State, timeout time.Duration) *model.Job {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		j, err := st.Get(id)
		require.NoError(t, err)
		if j.State == want {
			return j
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach state %s in time", id, want)
	return nil
}

func TestWorkerHappyPath(t *testing.T) {
	st, cfg := newHarness(t)
	require.NoError(t, st.Insert(&model.Job{ID: "a", Command: "echo hi", MaxRetries: 3}))

	log := logging.New(testWriter{t}, -100)
	w := New(Identity(), st, cfg, clock.Real(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	j := waitForState(t, st, "a", model.StateCompleted, 5*time.Second)
	assert.Equal(t, 0, j.Attempts)
	require.NotNil(t, j.Output)
	assert.Contains(t, *j.Output, "hi")
}

func TestWorkerRetriesThenDies(t *testing.T) {
	st, cfg := newHarness(t)
	require.NoError(t, cfg.Set("backoff-base", "1")) // keep the test fast: 1^n = 1s
	require.NoError(t, st.Insert(&model.Job{ID: "a", Command: "exit 1", MaxRetries: 1}))

	log := logging.New(testWriter{t}, -100)
	w := New(Identity(), st, cfg, clock.Real(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	j := waitForState(t, st, "a", model.StateDead, 10*time.Second)
	assert.Equal(t, 2, j.Attempts) // max_retries=1 permits 2 total executions
}

func TestWorkerGracefulShutdownDoesNotFailInFlightJob(t *testing.T) {
	st, cfg := newHarness(t)
	require.NoError(t, st.Insert(&model.Job{ID: "a", Command: "sleep 30", MaxRetries: 3}))

	log := logging.New(testWriter{t}, -100)
	w := New(Identity(), st, cfg, clock.Real(), log)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	// Let it acquire and start the job, then request shutdown.
	waitForState(t, st, "a", model.StateProcessing, 2*time.Second)
	cancel()

	// Give the worker time to hit its (1s) grace window and return.
	time.Sleep(2 * time.Second)

	j, err := st.Get("a")
	require.NoError(t, err)
	assert.Equal(t, model.StateProcessing, j.State, "a cancelled worker must leave the job processing, not mark it failed")
}

// testWriter adapts *testing.T to io.Writer so log output surfaces in
// `go test -v` instead of stdout.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
