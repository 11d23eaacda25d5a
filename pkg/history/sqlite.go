package history

import (
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// SQLite is a SQLite-backed store. Safe for use by a single process; access
// is serialized through a mutex because the connection is shared.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (creating if necessary) a store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			expression TEXT NOT NULL,
			notation TEXT NOT NULL,
			result TEXT NOT NULL,
			error TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	s := &SQLite{db: db}

	version, err := s.getMetadata("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		if err := s.setMetadata("schema_version", schemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case schemaVersion:
	default:
		db.Close()
		return nil, errors.Errorf("unsupported schema version: %s (expected %s)", version, schemaVersion)
	}

	return s, nil
}

func (s *SQLite) Record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO evaluations (expression, notation, result, error, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.Expression, e.Notation, e.Result, e.Err, e.CreatedAt.UnixNano())
	return errors.Wrap(err, "failed to record evaluation")
}

func (s *SQLite) Recent(n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT expression, notation, result, error, created_at
		FROM evaluations ORDER BY id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query evaluations")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.Expression, &e.Notation, &e.Result, &e.Err, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) getMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLite) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
