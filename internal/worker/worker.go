// Package worker implements the single-process job-processing loop
// described in spec.md §4.4: lease a job, execute it, report the
// outcome, repeat, with cooperative shutdown at three defined
// suspension points.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"queuectl/internal/clock"
	"queuectl/internal/config"
	"queuectl/internal/executor"
	"queuectl/internal/model"
	"queuectl/internal/retry"
	"queuectl/internal/store"
)

// Worker polls Store for leasable jobs and runs them through Executor.
type Worker struct {
	ID     string
	Store  *store.Store
	Config *config.Store
	Clock  clock.Clock
	Log    *slog.Logger
}

// New builds a Worker with a logger already tagged with its identity.
func New(id string, st *store.Store, cfg *config.Store, c clock.Clock, log *slog.Logger) *Worker {
	return &Worker{
		ID:     id,
		Store:  st,
		Config: cfg,
		Clock:  c,
		Log:    log.With("worker_id", id),
	}
}

// Run is the worker loop. It returns when ctx is cancelled and, if a
// job was in flight, either that job finished within its grace window
// or the grace window elapsed and the job's lease was left to expire
// naturally — never both cancelled AND marked failed.
func (w *Worker) Run(ctx context.Context) {
	w.Log.Info("worker started")
	defer w.Log.Info("worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		snap, err := w.Config.Read()
		if err != nil {
			w.Log.Error("read config", "error", err)
			if !w.sleep(ctx, time.Second) {
				return
			}
			continue
		}

		job, err := w.Store.AcquireOne(w.ID, time.Duration(snap.LeaseTTLSeconds)*time.Second)
		if err != nil {
			// StoreUnavailable per spec.md §7: log and back off, never
			// corrupt state because no partial write was acknowledged.
			w.Log.Error("acquire job", "error", err)
			if !w.sleep(ctx, time.Duration(snap.PollIntervalSeconds)*time.Second) {
				return
			}
			continue
		}

		if job == nil {
			if !w.sleep(ctx, time.Duration(snap.PollIntervalSeconds)*time.Second) {
				return
			}
			continue
		}

		w.runOne(ctx, job, snap)
	}
}

// sleep waits for d, honoring ctx cancellation as an interrupt. Returns
// false if the caller should stop.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// runOne executes a single leased job and reports its outcome, honoring
// a grace window if shutdown is requested mid-execution.
func (w *Worker) runOne(ctx context.Context, job *model.Job, snap config.Snapshot) {
	log := w.Log.With("job_id", job.ID, "attempt_id", uuid.NewString())
	log.Info("processing job", "command", job.Command)

	execCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan executor.Outcome, 1)
	go func() {
		done <- executor.Run(execCtx, job.Command, executor.Options{
			Timeout:     time.Duration(snap.JobTimeoutSeconds) * time.Second,
			OutputLimit: snap.OutputLimitBytes,
		})
	}()

	stopHeartbeat := w.heartbeat(job.ID, time.Duration(snap.LeaseTTLSeconds)*time.Second)
	defer stopHeartbeat()

	var outcome executor.Outcome
	select {
	case outcome = <-done:
	case <-ctx.Done():
		grace := time.Duration(snap.GraceWindowSeconds) * time.Second
		select {
		case outcome = <-done:
		case <-time.After(grace):
			log.Warn("grace window elapsed, cancelling job; lease left to expire")
			cancel()
			<-done
			return
		}
	}

	if err := w.Store.AppendLog(job.ID, "stdout", outcome.Output); err != nil {
		log.Error("append log", "error", err)
	}

	if outcome.Success {
		if err := w.Store.Complete(job.ID, w.ID, outcome.Output); err != nil {
			w.logLeaseOutcome(log, "complete", err)
		}
		log.Info("job completed")
		return
	}

	decision := retry.Decide(job.Attempts+1, job.MaxRetries, snap.BackoffBase)
	errMsg := ""
	if outcome.Err != nil {
		errMsg = outcome.Err.Error()
	}
	if err := w.Store.Fail(job.ID, w.ID, errMsg, outcome.Output, decision); err != nil {
		w.logLeaseOutcome(log, "fail", err)
		return
	}
	if decision.Verdict == retry.VerdictDead {
		log.Warn("job moved to dead letter queue", "attempts", job.Attempts+1, "reason", outcome.Reason)
	} else {
		log.Warn("job failed, will retry", "attempts", job.Attempts+1, "retry_in_seconds", int(decision.Delay.Seconds()), "reason", outcome.Reason)
	}
}

// logLeaseOutcome swallows ErrLeaseLost per spec.md §7 — the lease
// expired and someone else (or no one) owns the job now — and logs
// anything else as an unexpected store error.
func (w *Worker) logLeaseOutcome(log *slog.Logger, op string, err error) {
	if err == store.ErrLeaseLost {
		log.Warn("lease lost before reporting outcome, discarding result", "op", op)
		return
	}
	log.Error("store update failed", "op", op, "error", err)
}

// heartbeat refreshes the job's lease at leaseTTL/3 while it runs, so a
// single long attempt doesn't let another worker reclaim it as stale.
// Returns a function that stops the heartbeat goroutine.
func (w *Worker) heartbeat(jobID string, leaseTTL time.Duration) func() {
	interval := leaseTTL / 3
	if interval <= 0 {
		interval = time.Second
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := w.Store.Heartbeat(jobID, w.ID); err != nil && err != store.ErrLeaseLost {
					w.Log.Error("heartbeat failed", "job_id", jobID, "error", err)
				}
			}
		}
	}()
	return func() { close(stop) }
}
