// Package store is the relational scratch store for one build. Every run
// drops and recreates the schema; there are no migrations.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Store wraps the SQLite database holding content nodes and the satellite
// records attached to them by later stages.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the database at dbPath and ensures the
// schema exists. Use ":memory:" for a throwaway store.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryStore, "create database directory").
				Fatal().WithContext("path", dbPath).Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, ErrOpenFailed.Message()).Fatal().
			WithContext("path", dbPath).Build()
	}
	// One connection: an in-memory database exists per connection, and the
	// build is the only writer anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath, logger: slog.Default()}
	if err := s.create(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// WithLogger replaces the logger used for commit failures.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset drops every table and recreates the schema.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tables[i]); err != nil {
			return errors.WrapError(err, errors.CategoryStore, "drop table").Fatal().
				WithContext("table", tables[i]).Build()
		}
	}
	return s.createLocked(ctx)
}

func (s *Store) create(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx)
}

func (s *Store) createLocked(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.WrapError(err, errors.CategoryStore, ErrSchemaFailed.Message()).Fatal().Build()
	}
	return nil
}

// withTx runs fn in a transaction. Commit failures are logged with op and
// returned as fatal store errors.
func (s *Store) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "begin transaction").Fatal().
			WithContext("op", op).Build()
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("Database commit failed",
			slog.String("op", op), logfields.Path(s.path), logfields.Error(err))
		return errors.WrapError(err, errors.CategoryStore, ErrCommitFailed.Message()).Fatal().
			WithContext("op", op).WithContext("path", s.path).Build()
	}
	return nil
}

func queryErr(err error, what string) error {
	return errors.WrapError(err, errors.CategoryStore, ErrQueryFailed.Message()).
		Fatal().WithContext("query", what).Build()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
