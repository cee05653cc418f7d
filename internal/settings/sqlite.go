// internal/settings/sqlite.go
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// ErrBusy is returned when the database stayed locked past the busy timeout.
var ErrBusy = errors.New("settings store busy")

// SQLiteStore persists settings in a single-table SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB

	mu     sync.Mutex
	staged map[string]json.RawMessage
	now    func() time.Time
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("settings: open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("settings: ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("settings: create schema: %w", err)
	}
	return &SQLiteStore{
		sqlDB:  sqlDB,
		staged: make(map[string]json.RawMessage),
		now:    time.Now,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrClosed
	}

	s.mu.Lock()
	if v, ok := s.staged[key]; ok {
		s.mu.Unlock()
		return clone(v), nil
	}
	s.mu.Unlock()

	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings: %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("settings: get %q: %w", key, mapSQLiteError(err))
	}
	return json.RawMessage(value), nil
}

func (s *SQLiteStore) Set(key string, value json.RawMessage) error {
	if s == nil || s.sqlDB == nil {
		return ErrClosed
	}
	if !json.Valid(value) {
		return fmt.Errorf("settings: set %q: value is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[key] = clone(value)
	return nil
}

// Save commits every staged value in one transaction. On failure the values
// stay staged for the next attempt.
func (s *SQLiteStore) Save(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.staged) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settings: begin: %w", mapSQLiteError(err))
	}
	now := s.now().UTC().UnixMilli()
	for k, v := range s.staged {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, []byte(v), now)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("settings: save %q: %w", k, mapSQLiteError(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("settings: commit: %w", mapSQLiteError(err))
	}
	clear(s.staged)
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func mapSQLiteError(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
	}
	return err
}
