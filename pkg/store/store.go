// CLAUDE:SUMMARY SQLite datastore for case records (usagers) with their problematiques and actions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a user id does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS usagers (
	id                     TEXT PRIMARY KEY,
	service_id             TEXT NOT NULL DEFAULT '',
	nom                    TEXT NOT NULL DEFAULT '',
	prenom                 TEXT NOT NULL DEFAULT '',
	secteur                TEXT NOT NULL DEFAULT '',
	adresse_rue            TEXT NOT NULL DEFAULT '',
	notes_generales        TEXT NOT NULL DEFAULT '',
	remarques              TEXT NOT NULL DEFAULT '',
	information_importante TEXT NOT NULL DEFAULT '',
	annee                  INTEGER NOT NULL DEFAULT 0,
	created_at             INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usagers_service ON usagers(service_id);
CREATE INDEX IF NOT EXISTS idx_usagers_annee ON usagers(annee);

CREATE TABLE IF NOT EXISTS problematiques (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES usagers(id) ON DELETE CASCADE,
	type             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	date_signalement INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_problematiques_user ON problematiques(user_id);

CREATE TABLE IF NOT EXISTS actions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES usagers(id) ON DELETE CASCADE,
	type        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_user ON actions(user_id);
`

// Open opens (or creates) the SQLite database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the SQLite connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// execer and queryer are satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func newID() string { return uuid.NewString() }

// validID reports whether id is a well-formed UUID.
func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func userExists(ctx context.Context, q queryer, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM usagers WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", id, err)
	}
	return nil
}
