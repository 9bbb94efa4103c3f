// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/logging"
)

// Store wraps the DuckDB connection and provides the sync engine's
// persistence operations.
type Store struct {
	conn     *sql.DB
	cfg      *config.DatabaseConfig
	readOnly bool

	// Per-natural-key write locks for concurrent UPSERTs
	keyLocks sync.Map

	// now stamps last_synced_at; replaced in tests
	now func() time.Time
}

// New opens (creating if needed) the database read-write and initializes
// the schema.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	// Ensure parent directory exists for database file
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, failure("open", "", fmt.Errorf("failed to create database directory %s: %w", dbDir, err))
			}
		}
	}

	conn, err := sql.Open("duckdb", connString(cfg, "read_write"))
	if err != nil {
		return nil, failure("open", "", fmt.Errorf("failed to open database: %w", err))
	}

	s := &Store{
		conn: conn,
		cfg:  cfg,
		now:  time.Now,
	}

	s.configureConnectionPool()

	if err := s.initialize(); err != nil {
		closeQuietly(conn)
		return nil, failure("open", "", fmt.Errorf("failed to initialize database: %w", err))
	}

	logging.Debug().Str("path", cfg.Path).Msg("Database opened")
	return s, nil
}

// OpenReadOnly opens an existing database with access_mode=read_only. Any
// write statement fails inside DuckDB; the store's own write methods refuse
// early with ErrReadOnly.
func OpenReadOnly(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.Path == ":memory:" {
		return nil, failure("open", "", fmt.Errorf("read-only mode requires a database file"))
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, failure("open", "", fmt.Errorf("database %s: %w", cfg.Path, err))
	}

	conn, err := sql.Open("duckdb", connString(cfg, "read_only"))
	if err != nil {
		return nil, failure("open", "", fmt.Errorf("failed to open database: %w", err))
	}

	s := &Store{conn: conn, cfg: cfg, readOnly: true, now: time.Now}
	s.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, failure("open", "", fmt.Errorf("failed to ping database: %w", err))
	}
	return s, nil
}

// connString builds the DuckDB DSN with tuning options.
// Auto-install/auto-load are disabled: the schema needs no extensions and
// this avoids network access at startup.
func connString(cfg *config.DatabaseConfig, accessMode string) string {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}
	return fmt.Sprintf("%s?access_mode=%s&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, accessMode, numThreads, maxMemory)
}

// configureConnectionPool sets connection pool parameters
func (s *Store) configureConnectionPool() {
	s.conn.SetMaxOpenConns(runtime.NumCPU())
	s.conn.SetMaxIdleConns(2)
	s.conn.SetConnMaxLifetime(time.Hour)
	s.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// initialize creates tables and flushes the WAL.
func (s *Store) initialize() error {
	if err := s.createTables(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}
	return nil
}

// Close checkpoints (read-write only) and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if !s.readOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return s.conn.Close()
}

// Ping checks if the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.conn.PingContext(ctx)
}

// Checkpoint forces a WAL checkpoint
func (s *Store) Checkpoint(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// ReadOnly reports whether the store was opened with OpenReadOnly.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// ensureContext applies a 30-second timeout when ctx carries no deadline.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// acquireKeyLock acquires the mutex guarding one natural key.
func (s *Store) acquireKeyLock(key string) *sync.Mutex {
	muInterface, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		s.keyLocks.Store(key, mu)
	}
	mu.Lock()
	return mu
}
