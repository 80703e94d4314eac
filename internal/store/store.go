// Package store persists the client's only durable state: a key/value
// settings table in a local sqlite database. The session record lives here
// under a single fixed key.
package store

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Store wraps the database connection
type Store struct {
	*sql.DB
}

// Open creates the connection and initializes the schema. An empty dataDir
// resolves to the XDG data directory.
func Open(dataDir string) (*Store, error) {
	path, err := dbPath(dataDir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db}, nil
}

// dbPath returns the path to the database file
func dbPath(dataDir string) (string, error) {
	dir := dataDir
	if dir == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
		dir = filepath.Join(base, "skt")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "skt.db"), nil
}

// Get retrieves a setting value by key, "" when absent
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Set stores a setting value
func (s *Store) Set(key, value string) error {
	_, err := s.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Delete removes a setting
func (s *Store) Delete(key string) error {
	_, err := s.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}
