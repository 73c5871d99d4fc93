// Package model defines the persistent job record shared by the store,
// worker, and admin layers.
package model

import "time"

// State is one of the five states in the job lifecycle.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateDead       State = "dead"
)

// States lists every valid state in lifecycle order, used to zero-fill
// counts and to validate --state flags.
var States = []State{StatePending, StateProcessing, StateCompleted, StateFailed, StateDead}

func (s State) Valid() bool {
	for _, v := range States {
		if v == s {
			return true
		}
	}
	return false
}

// Job is the sole persistent entity in the queue.
type Job struct {
	ID           string
	Command      string
	State        State
	Attempts     int
	MaxRetries   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  *time.Time
	LockedBy     *string
	LockedAt     *time.Time
	LastError    *string
	Output       *string
}
