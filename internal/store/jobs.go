package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"queuectl/internal/model"
)

// Insert adds job in state pending with attempts=0. Returns
// ErrDuplicateID if the id already exists; the store is left unchanged.
func (s *Store) Insert(j *model.Job) error {
	now := s.clock.Now()
	j.State = model.StatePending
	j.Attempts = 0
	j.CreatedAt = now
	j.UpdatedAt = now

	_, err := s.db.Exec(`
INSERT INTO jobs (id, command, state, attempts, max_retries, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Command, j.State, j.Attempts, j.MaxRetries, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// Get fetches a single job by id.
func (s *Store) Get(id string) (*model.Job, error) {
	row := s.db.QueryRow(`
SELECT id, command, state, attempts, max_retries, created_at, updated_at,
       next_retry_at, locked_by, locked_at, last_error, output
FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return j, err
}

// List enumerates jobs, optionally filtered by state, ordered by
// created_at ascending, capped at limit rows.
func (s *Store) List(state model.State, limit int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if state == "" {
		rows, err = s.db.Query(`
SELECT id, command, state, attempts, max_retries, created_at, updated_at,
       next_retry_at, locked_by, locked_at, last_error, output
FROM jobs ORDER BY created_at ASC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(`
SELECT id, command, state, attempts, max_retries, created_at, updated_at,
       next_retry_at, locked_by, locked_at, last_error, output
FROM jobs WHERE state = ? ORDER BY created_at ASC LIMIT ?`, state, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Counts returns the number of jobs in each state, zero-filled for
// states with no rows.
func (s *Store) Counts() (map[model.State]int, error) {
	out := map[model.State]int{}
	for _, st := range model.States {
		out[st] = 0
	}

	rows, err := s.db.Query(`SELECT state, COUNT(*) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[model.State(st)] = n
	}
	return out, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*model.Job, error) {
	var j model.Job
	var nextRetry, lockedAt sql.NullTime
	var lockedBy, lastError, output sql.NullString

	if err := row.Scan(
		&j.ID, &j.Command, &j.State, &j.Attempts, &j.MaxRetries,
		&j.CreatedAt, &j.UpdatedAt, &nextRetry, &lockedBy, &lockedAt,
		&lastError, &output,
	); err != nil {
		return nil, err
	}
	if nextRetry.Valid {
		t := nextRetry.Time
		j.NextRetryAt = &t
	}
	if lockedAt.Valid {
		t := lockedAt.Time
		j.LockedAt = &t
	}
	if lockedBy.Valid {
		v := lockedBy.String
		j.LockedBy = &v
	}
	if lastError.Valid {
		v := lastError.String
		j.LastError = &v
	}
	if output.Valid {
		v := output.String
		j.Output = &v
	}
	return &j, nil
}
