package store

import (
	"database/sql"
	"fmt"
	"sync"

	"nickandperla.net/wires/internal/expr"
	"nickandperla.net/wires/internal/parser"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store. Gates are kept in their source form and
// re-parsed on Get.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS wires (
			name TEXT PRIMARY KEY,
			gate TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	// Check/set schema version
	version, err := s.getMetadata("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		if err := s.setMetadata("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Get retrieves the gate bound to a wire.
func (s *SQLite) Get(name string) (expr.Gate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src string
	err := s.db.QueryRow("SELECT gate FROM wires WHERE name = ?", name).Scan(&src)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	g, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("stored wire %s: %w", name, err)
	}
	return g, nil
}

// Put stores a gate by wire name.
func (s *SQLite) Put(name string, g expr.Gate) error {
	if g == nil {
		return fmt.Errorf("put %s: nil gate", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO wires (name, gate) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET gate = excluded.gate
	`, name, g.String())
	return err
}

// Delete removes a wire.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM wires WHERE name = ?", name)
	return err
}

// Names lists all stored wires in sorted order.
func (s *SQLite) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM wires ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// getMetadata retrieves metadata without locking (callers hold the lock or are in init).
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

// setMetadata stores metadata without locking (callers hold the lock or are in init).
func (s *SQLite) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
