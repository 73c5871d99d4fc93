package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"queuectl/internal/clock"
	"queuectl/internal/pidfile"
	"queuectl/internal/supervisor"
	"queuectl/internal/worker"
)

var workerCount int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Worker pool management",
}

var workerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a pool of worker processes and block until stopped",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		snap, err := cfg.Read()
		if err != nil {
			return err
		}

		fmt.Printf("starting %d worker(s), ctrl+C to stop\n", workerCount)
		return supervisor.Run(ctx, supervisor.Options{
			Count:       workerCount,
			DataDir:     dataDir,
			PidFilePath: pidFilePath(),
			GraceWindow: time.Duration(snap.GraceWindowSeconds) * time.Second,
			Log:         log,
		})
	},
}

var workerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Signal every registered worker process to shut down",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := pidfile.SignalAll(pidFilePath(), syscall.SIGTERM)
		if err != nil {
			return err
		}
		fmt.Printf("signaled %d worker process(es)\n", n)
		return nil
	},
}

// workerRunCmd is the hidden per-process worker loop entry point the
// Supervisor execs into. It is not part of the documented CLI surface
// (spec.md §6 names enqueue/worker start/worker stop/status/list/dlq,
// not this), but it is what `worker start` actually spawns as a child.
var workerRunCmd = &cobra.Command{
	Use:    "run",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := worker.New(worker.Identity(), st, cfg, clock.Real(), log)
		w.Run(ctx)
		return nil
	},
}

func init() {
	workerStartCmd.Flags().IntVar(&workerCount, "count", 1, "Number of worker processes to start")
	workerCmd.AddCommand(workerStartCmd, workerStopCmd, workerRunCmd)
	rootCmd.AddCommand(workerCmd)
}
