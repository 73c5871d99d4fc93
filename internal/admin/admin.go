// Package admin implements spec.md §4.6: the thin operational commands
// (enqueue, status, list, DLQ inspection/retry) that sit above Store
// and don't participate in the lease/execute loop.
package admin

import (
	"errors"
	"fmt"
	"strings"

	"queuectl/internal/config"
	"queuectl/internal/model"
	"queuectl/internal/pidfile"
	"queuectl/internal/store"
)

// ErrValidation reports a malformed enqueue request (spec.md §7).
var ErrValidation = errors.New("admin: validation failed")

// Admin wires Store, Config, and the PID registry behind the
// operations the CLI layer calls into.
type Admin struct {
	Store       *store.Store
	Config      *config.Store
	PidFilePath string
}

// New builds an Admin.
func New(st *store.Store, cfg *config.Store, pidFilePath string) *Admin {
	return &Admin{Store: st, Config: cfg, PidFilePath: pidFilePath}
}

// Enqueue validates and inserts a new job. An empty id or command is a
// validation error. maxRetries is a pointer so a caller can distinguish
// "omitted" (nil, falls back to the configured default, SPEC_FULL.md
// §10) from an explicit 0 (a legitimate value per spec.md §3: one
// attempt, no retries) — both must not collapse to the same thing.
func (a *Admin) Enqueue(id, command string, maxRetries *int) (*model.Job, error) {
	id = strings.TrimSpace(id)
	command = strings.TrimSpace(command)
	if id == "" {
		return nil, fmt.Errorf("%w: job id must not be empty", ErrValidation)
	}
	if command == "" {
		return nil, fmt.Errorf("%w: command must not be empty", ErrValidation)
	}
	if maxRetries != nil && *maxRetries < 0 {
		return nil, fmt.Errorf("%w: max_retries must not be negative", ErrValidation)
	}

	retries := 0
	if maxRetries != nil {
		retries = *maxRetries
	} else {
		snap, err := a.Config.Read()
		if err != nil {
			return nil, err
		}
		retries = snap.MaxRetries
	}

	job := &model.Job{ID: id, Command: command, MaxRetries: retries}
	if err := a.Store.Insert(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Status is the combined view `queuectl status` prints: job counts by
// state plus which worker PIDs are actually alive right now.
type Status struct {
	Counts      map[model.State]int
	AlivePids   []int
	PidFilePath string
}

// Status reports current queue depth by state and live worker PIDs.
func (a *Admin) Status() (Status, error) {
	counts, err := a.Store.Counts()
	if err != nil {
		return Status{}, err
	}
	pids, err := pidfile.Alive(a.PidFilePath)
	if err != nil {
		return Status{}, err
	}
	return Status{Counts: counts, AlivePids: pids, PidFilePath: a.PidFilePath}, nil
}

// List enumerates jobs, optionally filtered by state.
func (a *Admin) List(state model.State, limit int) ([]*model.Job, error) {
	return a.Store.List(state, limit)
}

// DlqList lists jobs in the dead letter queue.
func (a *Admin) DlqList(limit int) ([]*model.Job, error) {
	return a.Store.List(model.StateDead, limit)
}

// DlqRetry resets a dead job back to pending with a fresh attempt
// budget, per spec.md §4.6.
func (a *Admin) DlqRetry(id string) error {
	return a.Store.DlqRetry(id)
}

// Logs returns the most recent captured log lines for a job.
func (a *Admin) Logs(jobID string, limit int) ([]store.LogLine, error) {
	if _, err := a.Store.Get(jobID); err != nil {
		return nil, err
	}
	return a.Store.RecentLogs(jobID, limit)
}
