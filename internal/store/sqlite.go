package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite" // pure-Go SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

// DB wraps a SQLite connection with migration support.
type DB struct {
	sql *sql.DB
	log *logging.Logger
}

// Open opens (or creates) a SQLite database at the given path and runs
// migrations. Use ":memory:" for tests.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	db := &DB{sql: sqlDB, log: log.Sub("store")}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	db.log.Info().Str("path", path).Msg("database opened")
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.sql.Close()
}

// SQLiteStore implements Store on a SQLite database. Each session is one
// row holding the full state blob; Save replaces the whole row under an
// optimistic version check.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore creates a conversation store using the given database.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*interview.Session, error) {
	var state string
	var version int64
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT state, version FROM sessions WHERE id = ?`, sessionID,
	).Scan(&state, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	var session interview.Session
	if err := json.Unmarshal([]byte(state), &session); err != nil {
		s.db.log.Error().Err(err).Str("session", sessionID).Msg("stored state undecodable")
		return &interview.Session{ID: sessionID, Version: version}, ErrCorrupt
	}
	session.Version = version
	return &session, nil
}

func (s *SQLiteStore) Save(ctx context.Context, session *interview.Session) error {
	next := session.Version + 1
	session.UpdatedAt = time.Now().UTC()

	blob, err := encodeState(session, next)
	if err != nil {
		return err
	}

	if session.Version == 0 {
		_, err := s.db.sql.ExecContext(ctx,
			`INSERT INTO sessions (id, state, version, updated_at) VALUES (?, ?, ?, ?)`,
			session.ID, blob, next, session.UpdatedAt.Format(time.DateTime),
		)
		if err != nil {
			// A duplicate id is the create/create race; anything else is a
			// real storage failure and must not look retryable.
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return fmt.Errorf("saving session %s: %w", session.ID, err)
		}
		session.Version = next
		return nil
	}

	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE sessions SET state = ?, version = ?, updated_at = ? WHERE id = ? AND version = ?`,
		blob, next, session.UpdatedAt.Format(time.DateTime), session.ID, session.Version,
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", session.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving session %s: %w", session.ID, err)
	}
	if affected == 0 {
		return ErrConflict
	}
	session.Version = next
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking session %s: %w", sessionID, err)
	}
	return count > 0, nil
}

// isDuplicateKey reports whether err is a unique or primary key violation.
func isDuplicateKey(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func encodeState(session *interview.Session, version int64) (string, error) {
	cp := session.Clone()
	cp.Version = version
	blob, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	return string(blob), nil
}
