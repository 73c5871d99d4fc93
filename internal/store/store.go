// Package store is the sole custodian of persistent job state and the
// state-machine transitions in spec.md §4.1. All mutation happens
// inside single-statement or explicitly serialized transactions so the
// invariants in spec.md §3 hold at any crash point.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"queuectl/internal/clock"
	"queuectl/internal/store/migrations"
)

// LeaseTTLDefault is the upper bound on silent recovery latency after a
// worker crash, per spec.md §4.1.
const LeaseTTLDefault = 5 * time.Minute

// Store wraps the sqlite-backed jobs table.
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

// Open creates the database file (and parent directories) if needed,
// runs pending schema migrations, and returns a ready Store. A single
// connection is kept open: the jobs table's single-writer contract in
// spec.md §5 is easiest to guarantee by never letting the driver hand
// out a second concurrent connection within one process.
func Open(dbPath string, c clock.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	// _txlock=immediate makes every db.Begin() issue BEGIN IMMEDIATE, so
	// AcquireOne's select-then-update is serialized against concurrent
	// writers instead of racing on a deferred transaction's upgrade.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	if c == nil {
		c = clock.Real()
	}
	return &Store{db: db, clock: c}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// runMigrations applies every pending migration under
// internal/store/migrations to db, using golang-migrate's sqlite3
// driver and its embedded-filesystem source.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3migrate.WithInstance(db, &sqlite3migrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration engine: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
