package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// ErrUnknownSource is returned for a source name that was never registered.
var ErrUnknownSource = errors.New("unknown import source")

// Source is a named CSV export (a file path or an http(s) URL) that can be
// imported repeatedly, e.g. the nightly dump of a partner service.
type Source struct {
	Name        string
	URL         string
	Description string
	Format      Format
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	LastImport  *int64
	LastRows    *int
	UpdatedAt   int64
}

// SourceDB manages the import_sources SQLite table.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the SQLite database at path and ensures the
// import_sources table exists. It may share the file of the case store.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS import_sources (
		name         TEXT PRIMARY KEY,
		url          TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		delimiter    TEXT NOT NULL DEFAULT ',',
		encoding     TEXT NOT NULL DEFAULT 'utf-8',
		has_header   INTEGER NOT NULL DEFAULT 1,
		last_check   INTEGER,
		last_status  INTEGER,
		last_error   TEXT,
		last_import  INTEGER,
		last_rows    INTEGER,
		updated_at   INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}

	return &SourceDB{db: db}, nil
}

// Close closes the SQLite connection.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Register adds a source or replaces the URL, description and format of an
// existing one. Check and import history are kept.
func (s *SourceDB) Register(ctx context.Context, src Source) error {
	if src.Name == "" || src.URL == "" {
		return errors.New("register source: name and url are required")
	}
	f := src.Format
	if f.Delimiter == "" {
		f.Delimiter = ","
	}
	if f.Encoding == "" {
		f.Encoding = "utf-8"
	}
	const q = `INSERT INTO import_sources
		(name, url, description, delimiter, encoding, has_header, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			url = excluded.url,
			description = excluded.description,
			delimiter = excluded.delimiter,
			encoding = excluded.encoding,
			has_header = excluded.has_header,
			updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, q, src.Name, src.URL, src.Description,
		f.Delimiter, f.Encoding, f.HasHeader, time.Now().Unix()); err != nil {
		return fmt.Errorf("register source %s: %w", src.Name, err)
	}
	return nil
}

const sourceColumns = `name, url, description, delimiter, encoding, has_header,
	last_check, last_status, last_error, last_import, last_rows, updated_at`

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var src Source
	err := row.Scan(&src.Name, &src.URL, &src.Description,
		&src.Format.Delimiter, &src.Format.Encoding, &src.Format.HasHeader,
		&src.LastCheck, &src.LastStatus, &src.LastError, &src.LastImport, &src.LastRows, &src.UpdatedAt)
	return src, err
}

// Get returns the source registered under name.
func (s *SourceDB) Get(ctx context.Context, name string) (Source, error) {
	src, err := scanSource(s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM import_sources WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	if err != nil {
		return Source{}, fmt.Errorf("get source %s: %w", name, err)
	}
	return src, nil
}

// SetURL points a registered source at a new location.
func (s *SourceDB) SetURL(ctx context.Context, name, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET url = ?, updated_at = ? WHERE name = ?`,
		url, time.Now().Unix(), name,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", name, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return nil
}

// Remove deletes a source.
func (s *SourceDB) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_sources WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove source %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *SourceDB) UpdateCheck(ctx context.Context, name string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ? WHERE name = ?`,
		time.Now().Unix(), status, errPtr, name,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", name, err)
	}
	return nil
}

// RecordImport stores the time and row count of a successful import.
func (s *SourceDB) RecordImport(ctx context.Context, name string, stats Stats) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET last_import = ?, last_rows = ? WHERE name = ?`,
		time.Now().Unix(), stats.Imported, name,
	)
	if err != nil {
		return fmt.Errorf("record import for %s: %w", name, err)
	}
	return nil
}

// List returns all sources ordered by name.
func (s *SourceDB) List(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM import_sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// ImportSource imports the registered source name into w and records the run.
func ImportSource(ctx context.Context, w Writer, sdb *SourceDB, name string, logger *slog.Logger) (Stats, error) {
	src, err := sdb.Get(ctx, name)
	if err != nil {
		return Stats{}, err
	}
	stats, err := ImportCSV(ctx, w, src.URL, src.Format, logger)
	if err != nil {
		return stats, fmt.Errorf("source %s: %w", name, err)
	}
	if err := sdb.RecordImport(ctx, name, stats); err != nil {
		return stats, err
	}
	return stats, nil
}
