// Package supervisor implements spec.md §4.5: it spawns a fixed-size
// pool of worker OS processes, records their PIDs in the registry file
// internal/pidfile manages, and forwards shutdown.
//
// Workers are real child processes, not goroutines, because the PID
// registry names entities `worker stop` can signal independently of
// the Supervisor's own lifetime — a goroutine has no PID to write down.
// Each child is this same binary, re-invoked with the hidden
// `worker run` subcommand.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"queuectl/internal/pidfile"
)

// Options configures a supervised worker pool.
type Options struct {
	Count       int
	DataDir     string
	PidFilePath string
	GraceWindow time.Duration
	Log         *slog.Logger
}

// Run spawns Options.Count worker child processes, writes the PID
// registry, and blocks until every child exits or ctx is cancelled. On
// cancellation it signals every child with SIGTERM, waits up to
// GraceWindow, then SIGKILLs stragglers. The registry file is removed
// before Run returns.
func Run(ctx context.Context, opts Options) error {
	if opts.Count <= 0 {
		opts.Count = 1
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("supervisor: resolve self: %w", err)
	}

	cmds := make([]*exec.Cmd, 0, opts.Count)
	pids := make([]int, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		c := exec.Command(self, "worker", "run", "--data-dir", opts.DataDir)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if err := c.Start(); err != nil {
			// Best-effort teardown of whatever already started.
			for _, started := range cmds {
				_ = started.Process.Kill()
			}
			return fmt.Errorf("supervisor: start worker %d: %w", i, err)
		}
		cmds = append(cmds, c)
		pids = append(pids, c.Process.Pid)
		opts.Log.Info("worker process started", "pid", c.Process.Pid)
	}

	if err := pidfile.Write(opts.PidFilePath, pids); err != nil {
		return fmt.Errorf("supervisor: write pid file: %w", err)
	}
	defer func() {
		if err := pidfile.Remove(opts.PidFilePath); err != nil {
			opts.Log.Error("remove pid file", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		wg.Add(len(cmds))
		for _, c := range cmds {
			c := c
			go func() {
				defer wg.Done()
				if err := c.Wait(); err != nil {
					opts.Log.Warn("worker process exited", "pid", c.Process.Pid, "error", err)
				} else {
					opts.Log.Info("worker process exited", "pid", c.Process.Pid)
				}
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	opts.Log.Info("shutdown requested, signaling workers", "count", len(cmds))
	for _, c := range cmds {
		_ = c.Process.Signal(syscall.SIGTERM)
	}

	grace := opts.GraceWindow
	if grace <= 0 {
		grace = 10 * time.Second
	}
	select {
	case <-done:
		return nil
	case <-time.After(grace):
	}

	opts.Log.Warn("grace window elapsed, killing remaining workers")
	for _, c := range cmds {
		_ = c.Process.Kill()
	}
	<-done
	return nil
}
