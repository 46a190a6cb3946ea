// Package sqlite stores books in a local SQLite file. It is the default
// backend for command line use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kozaktomas/photobook/internal/database"
)

// Store wraps SQLite-backed book persistence.
type Store struct {
	db *sql.DB
}

// Path extracts the file path from a sqlite://path URL. Anything else is
// returned unchanged.
func Path(rawURL string) string {
	if p, ok := strings.CutPrefix(rawURL, "sqlite://"); ok {
		return p
	}
	if p, ok := strings.CutPrefix(rawURL, "sqlite:"); ok {
		return p
	}
	return rawURL
}

// Open opens (or creates) the database and ensures the schema.
func Open(ctx context.Context, rawURL string) (*Store, error) {
	path := Path(rawURL)
	if path == "" {
		return nil, fmt.Errorf("invalid SQLite URL %q", rawURL)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	// one connection: writes are serialized and :memory: stays a single database
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS books (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			book_format TEXT NOT NULL DEFAULT '',
			page_count  INTEGER NOT NULL DEFAULT 0,
			photo_count INTEGER NOT NULL DEFAULT 0,
			document    TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS books_updated_at_idx ON books (updated_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

// Initialize opens the store and registers SQLite as the active storage backend.
func Initialize(ctx context.Context, rawURL string) (*Store, error) {
	s, err := Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	database.RegisterBookBackend(database.SchemeSQLite, func() database.BookWriter { return s })
	return s, nil
}
