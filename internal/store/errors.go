package store

import "errors"

// Sentinel errors matching the taxonomy in spec.md §7. Callers compare
// with errors.Is; none of these wrap a lower-level cause worth chaining
// past the Store boundary.
var (
	// ErrDuplicateID is returned by Insert when the job's id already exists.
	ErrDuplicateID = errors.New("store: duplicate job id")

	// ErrNotFound is returned when an operation targets a job id that
	// does not exist.
	ErrNotFound = errors.New("store: job not found")

	// ErrInvalidTransition is returned by DlqRetry when the target job is
	// not in the dead state.
	ErrInvalidTransition = errors.New("store: invalid state transition")

	// ErrLeaseLost is returned by Complete/Fail/Heartbeat when the row is
	// no longer processing under the caller's worker id — the lease
	// expired and another worker (or none) now owns it. Callers must
	// swallow this, not treat it as a hard failure.
	ErrLeaseLost = errors.New("store: lease lost")
)
