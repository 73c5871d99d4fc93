package store

import (
	"fmt"
	"time"
)

// LogLine is one recorded chunk of a job attempt's output history,
// supplementing the single-slot Job.Output field with a queryable
// per-attempt trail (see SPEC_FULL.md §4.1).
type LogLine struct {
	Timestamp time.Time
	Stream    string
	Chunk     string
}

// AppendLog records one chunk of output for jobID.
func (s *Store) AppendLog(jobID, stream, chunk string) error {
	_, err := s.db.Exec(`
INSERT INTO job_logs (job_id, ts, stream, chunk) VALUES (?, ?, ?, ?)`,
		jobID, s.clock.Now(), stream, chunk)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// RecentLogs returns the most recent limit log lines for jobID, oldest
// first.
func (s *Store) RecentLogs(jobID string, limit int) ([]LogLine, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.Query(`
SELECT ts, stream, chunk FROM job_logs
WHERE id IN (SELECT id FROM job_logs WHERE job_id = ? ORDER BY ts DESC, id DESC LIMIT ?)
ORDER BY ts ASC, id ASC`, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent logs: %w", err)
	}
	defer rows.Close()

	var out []LogLine
	for rows.Next() {
		var l LogLine
		if err := rows.Scan(&l.Timestamp, &l.Stream, &l.Chunk); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
