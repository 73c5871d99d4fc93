// Package cmd wires the queuectl CLI together: cobra command tree,
// shared store/config/logger construction, and exit-code mapping for
// the sentinel errors internal/store and internal/admin define.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"queuectl/internal/admin"
	"queuectl/internal/clock"
	"queuectl/internal/config"
	"queuectl/internal/logging"
	"queuectl/internal/store"
)

var (
	dataDir string

	st  *store.Store
	cfg *config.Store
	adm *admin.Admin
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "queuectl",
	Short: "A CLI-operated, single-host background job queue.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if st != nil {
			return st.Close()
		}
		return nil
	},
}

// setup resolves --data-dir (falling back to the QUEUECTL_DATA_DIR
// bootstrap env var, then $HOME/.queuectl), takes the database path from
// QUEUECTL_DB_PATH when set (else <data-dir>/queuectl.db), and opens
// the store, config, admin, and logger every subcommand shares.
func setup() error {
	if st != nil {
		return nil // already initialized (e.g. tests invoking commands directly)
	}

	boot, err := config.LoadBootstrap()
	if err != nil {
		return fmt.Errorf("load env bootstrap: %w", err)
	}

	if dataDir == "" {
		dataDir = boot.DataDir
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".queuectl")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := boot.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "queuectl.db")
	}

	log = logging.New(os.Stderr, slog.LevelInfo)

	s, err := store.Open(dbPath, clock.Real())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	st = s

	c, err := config.Open(filepath.Join(dataDir, "queuectl_config.json"))
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	cfg = c

	adm = admin.New(st, cfg, pidFilePath())
	return nil
}

func pidFilePath() string {
	return filepath.Join(dataDir, "queuectl_workers.pid")
}

// Execute runs the CLI, exiting with the code the failing command's
// error maps to (spec.md §6).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for queuectl.db, queuectl_config.json, and the worker PID registry (default $HOME/.queuectl)")
}
