// Package store is the durable record store backing the ticket bot: chat
// dialogue states, contacts, requests, the operator and admin rosters, and
// the set of known chats. Each collection is keyed by a unique id; mutations
// are single SQLite statements, so every store operation is atomic with
// respect to the dispatcher and the per-chat handlers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/ticketline/ticketline/db"
	"github.com/ticketline/ticketline/internal/config"
)

var (
	// ErrNotInitialized is returned by every accessor called before Init has
	// completed. Callers must not swallow it into a silent no-op.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrNotFound is returned by update-style operations referencing a
	// missing id.
	ErrNotFound = errors.New("record not found")
)

// Store owns the SQLite handle. Construct with New, then call Init before
// any accessor; accessors fail with ErrNotInitialized until then.
type Store struct {
	logger *slog.Logger
	path   string
	seed   config.AdminConfig

	db    *sql.DB
	ready atomic.Bool
}

func New(log *slog.Logger, cfg config.StorageConfig, seed config.AdminConfig) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		logger: log.With(slog.String("service", "store")),
		path:   cfg.Path,
		seed:   seed,
	}
}

// Init opens the database, applies migrations, and seeds the super-admin
// when the admin roster is empty. It is the asynchronous part of the store
// lifecycle: run it from the application start hook.
func (s *Store) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has a single writer; one connection also keeps each store
	// operation a single serialized mutation.
	conn.SetMaxOpenConns(1)

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return err
	}
	s.db = conn

	if err := s.seedAdmin(ctx); err != nil {
		conn.Close()
		return err
	}

	s.ready.Store(true)
	s.logger.Info("store initialized", slog.String("path", s.path))
	return nil
}

// Close releases the database handle. Accessors fail with ErrNotInitialized
// afterwards.
func (s *Store) Close() error {
	s.ready.Store(false)
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) conn() (*sql.DB, error) {
	if !s.ready.Load() {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func runMigrations(conn *sql.DB) error {
	source, err := iofs.New(db.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// seedAdmin guarantees one super-admin exists so the roster can be managed
// at all. Runs inside Init, before the ready flag flips.
func (s *Store) seedAdmin(ctx context.Context) error {
	if s.seed.UserID == 0 {
		return nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, username, is_super, adder, added_at) VALUES (?, ?, 1, 'seed', ?)`,
		s.seed.UserID, s.seed.Username, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("seeded super admin", slog.Int64("user_id", s.seed.UserID))
	return nil
}
