package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuectl/internal/clock"
	"queuectl/internal/model"
	"queuectl/internal/retry"
)

func newTestStore(t *testing.T) (*Store, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	dbPath := filepath.Join(t.TempDir(), "queuectl.db")
	s, err := Open(dbPath, fc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fc
}

func TestInsertDuplicateRejected(t *testing.T) {
	s, _ := newTestStore(t)
	j := &model.Job{ID: "a", Command: "echo hi", MaxRetries: 3}
	require.NoError(t, s.Insert(j))

	err := s.Insert(&model.Job{ID: "a", Command: "echo again", MaxRetries: 3})
	assert.ErrorIs(t, err, ErrDuplicateID)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "echo hi", got.Command, "store must be unchanged after a rejected duplicate insert")
}

func TestAcquireOneOldestFirst(t *testing.T) {
	s, fc := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "b", Command: "echo b", MaxRetries: 3}))
	fc.Advance(time.Second)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "echo a", MaxRetries: 3}))

	j, err := s.AcquireOne("w1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, "b", j.ID, "oldest created_at must be acquired first")
	assert.Equal(t, model.StateProcessing, j.State)
	assert.Equal(t, "w1", *j.LockedBy)
}

func TestAcquireOneNothingLeasable(t *testing.T) {
	s, _ := newTestStore(t)
	j, err := s.AcquireOne("w1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, j)
}

func TestCompleteRequiresOwnedLease(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "echo hi", MaxRetries: 3}))
	_, err := s.AcquireOne("w1", time.Minute)
	require.NoError(t, err)

	err = s.Complete("a", "wrong-worker", "output")
	assert.ErrorIs(t, err, ErrLeaseLost)

	require.NoError(t, s.Complete("a", "w1", "hi\n"))
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, got.State)
	assert.Nil(t, got.LockedBy)
	assert.Nil(t, got.LockedAt)
}

func TestFailRetriesThenDies(t *testing.T) {
	s, fc := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "false", MaxRetries: 2}))

	for attempt := 1; attempt <= 2; attempt++ {
		j, err := s.AcquireOne("w1", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, j, "attempt %d", attempt)

		decision := retry.Decide(attempt, j.MaxRetries, 2)
		require.NoError(t, s.Fail(j.ID, "w1", "boom", "", decision))

		got, err := s.Get("a")
		require.NoError(t, err)
		assert.Equal(t, model.StateFailed, got.State)
		assert.Equal(t, attempt, got.Attempts)
		require.NotNil(t, got.NextRetryAt)
		assert.Nil(t, got.LockedBy)

		fc.Set(*got.NextRetryAt)
	}

	// Third failure exceeds max_retries=2: dead.
	j, err := s.AcquireOne("w1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, j)
	decision := retry.Decide(3, j.MaxRetries, 2)
	require.NoError(t, s.Fail(j.ID, "w1", "boom", "", decision))

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, model.StateDead, got.State)
	assert.Equal(t, 3, got.Attempts)
	assert.Nil(t, got.NextRetryAt)
}

func TestStaleLeaseIsReclaimed(t *testing.T) {
	s, fc := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "sleep 60", MaxRetries: 3}))
	_, err := s.AcquireOne("dead-worker", time.Minute)
	require.NoError(t, err)

	// Not yet stale: no one else can acquire it.
	j, err := s.AcquireOne("w2", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, j)

	fc.Advance(time.Minute + time.Second)
	j, err = s.AcquireOne("w2", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, j, "a lease older than the TTL must be reclaimable")
	assert.Equal(t, "w2", *j.LockedBy)
}

func TestDlqRetryResetsAttempts(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "false", MaxRetries: 0}))
	j, err := s.AcquireOne("w1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Fail(j.ID, "w1", "boom", "", retry.Decide(1, 0, 2)))

	got, _ := s.Get("a")
	require.Equal(t, model.StateDead, got.State)

	require.NoError(t, s.DlqRetry("a"))
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, model.StatePending, got.State)
	assert.Equal(t, 0, got.Attempts)
	assert.Nil(t, got.NextRetryAt)
	assert.Nil(t, got.LastError)
}

func TestDlqRetryRejectsNonDeadJob(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "echo hi", MaxRetries: 3}))

	err := s.DlqRetry("a")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = s.DlqRetry("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountsZeroFillsAllStates(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Insert(&model.Job{ID: "a", Command: "echo hi", MaxRetries: 3}))

	counts, err := s.Counts()
	require.NoError(t, err)
	for _, st := range model.States {
		_, ok := counts[st]
		assert.True(t, ok, "state %s must be present even at zero", st)
	}
	assert.Equal(t, 1, counts[model.StatePending])
}

func TestRepeatedAcquireYieldsDistinctJobs(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Insert(&model.Job{ID: string(rune('a' + i)), Command: "echo hi", MaxRetries: 3}))
	}

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		j, err := s.AcquireOne("w1", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, j)
		assert.False(t, seen[j.ID], "job %s acquired twice", j.ID)
		seen[j.ID] = true
	}

	j, err := s.AcquireOne("w1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, j, "no leasable jobs left")
}
