package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const blobsSchema = `CREATE TABLE IF NOT EXISTS blobs (
	name  TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// SQLiteStore keeps named blobs in a single-table sqlite database. It is the
// driver-backed alternative to FileStore for deployments that prefer one
// database file over a directory of JSON files.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: sqlite path must not be empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	if _, err := db.Exec(blobsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create blobs table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(name string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(name string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
