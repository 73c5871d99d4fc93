package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"queuectl/internal/model"
	"queuectl/internal/retry"
)

// AcquireOne atomically selects one leasable job (spec.md §3 I6) and
// transitions it to processing under workerID. Leasable means: pending,
// OR failed with next_retry_at <= now, OR processing with a lease older
// than leaseTTL. Ties break on oldest created_at then ascending id.
// Returns (nil, nil) if nothing is leasable right now.
//
// The select-then-update is done inside a single IMMEDIATE transaction
// so the leasable predicate is re-evaluated atomically: two workers
// racing on the same row can never both win the UPDATE.
func (s *Store) AcquireOne(workerID string, leaseTTL time.Duration) (*model.Job, error) {
	if leaseTTL <= 0 {
		leaseTTL = LeaseTTLDefault
	}
	now := s.clock.Now()
	staleBefore := now.Add(-leaseTTL)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("acquire: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRow(`
SELECT id FROM jobs
WHERE state = 'pending'
   OR (state = 'failed' AND next_retry_at <= ?)
   OR (state = 'processing' AND locked_at < ?)
ORDER BY created_at ASC, id ASC
LIMIT 1`, now, staleBefore)

	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("acquire: select: %w", err)
	}

	res, err := tx.Exec(`
UPDATE jobs
SET state = 'processing', locked_by = ?, locked_at = ?, updated_at = ?,
    next_retry_at = NULL
WHERE id = ?
  AND (state = 'pending'
       OR (state = 'failed' AND next_retry_at <= ?)
       OR (state = 'processing' AND locked_at < ?))`,
		workerID, now, now, id, now, staleBefore)
	if err != nil {
		return nil, fmt.Errorf("acquire: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("acquire: rows affected: %w", err)
	}
	if n == 0 {
		// Lost the race to another worker between SELECT and UPDATE.
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("acquire: commit: %w", err)
	}
	return s.Get(id)
}

// Complete marks a job completed. Requires state=processing and
// locked_by=workerID; a mismatch means the lease already expired and
// someone else (or no one) owns the job now, so it returns ErrLeaseLost
// for the caller to swallow rather than treat as a hard failure.
func (s *Store) Complete(id, workerID, output string) error {
	res, err := s.db.Exec(`
UPDATE jobs
SET state = 'completed', locked_by = NULL, locked_at = NULL,
    output = ?, updated_at = ?
WHERE id = ? AND state = 'processing' AND locked_by = ?`,
		output, s.clock.Now(), id, workerID)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	return requireOneRowLease(res)
}

// Fail records a failed attempt: increments attempts, then either
// schedules a retry or moves the job to dead, per decision. Requires
// state=processing and locked_by=workerID, else ErrLeaseLost.
func (s *Store) Fail(id, workerID, errStr, output string, decision retry.Decision) error {
	now := s.clock.Now()

	switch decision.Verdict {
	case retry.VerdictDead:
		res, err := s.db.Exec(`
UPDATE jobs
SET state = 'dead', attempts = attempts + 1, locked_by = NULL, locked_at = NULL,
    last_error = ?, output = ?, next_retry_at = NULL, updated_at = ?
WHERE id = ? AND state = 'processing' AND locked_by = ?`,
			errStr, output, now, id, workerID)
		if err != nil {
			return fmt.Errorf("fail(dead): %w", err)
		}
		return requireOneRowLease(res)

	default: // VerdictRetry
		next := now.Add(decision.Delay)
		res, err := s.db.Exec(`
UPDATE jobs
SET state = 'failed', attempts = attempts + 1, locked_by = NULL, locked_at = NULL,
    last_error = ?, output = ?, next_retry_at = ?, updated_at = ?
WHERE id = ? AND state = 'processing' AND locked_by = ?`,
			errStr, output, next, now, id, workerID)
		if err != nil {
			return fmt.Errorf("fail(retry): %w", err)
		}
		return requireOneRowLease(res)
	}
}

// Heartbeat refreshes locked_at for a lease still held by workerID.
// Used when a single attempt's running time approaches the lease TTL.
func (s *Store) Heartbeat(id, workerID string) error {
	res, err := s.db.Exec(`
UPDATE jobs SET locked_at = ? WHERE id = ? AND state = 'processing' AND locked_by = ?`,
		s.clock.Now(), id, workerID)
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return requireOneRowLease(res)
}

// DlqRetry resets a dead job back to pending with attempts=0, clearing
// next_retry_at and last_error. Any other current state is
// ErrInvalidTransition.
func (s *Store) DlqRetry(id string) error {
	now := s.clock.Now()
	res, err := s.db.Exec(`
UPDATE jobs
SET state = 'pending', attempts = 0, next_retry_at = NULL, last_error = NULL, updated_at = ?
WHERE id = ? AND state = 'dead'`, now, id)
	if err != nil {
		return fmt.Errorf("dlq retry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.Get(id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

func requireOneRowLease(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}
