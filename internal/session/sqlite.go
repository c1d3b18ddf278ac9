package session

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			session TEXT NOT NULL,
			seq INTEGER NOT NULL,
			line TEXT NOT NULL,
			ts TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session, seq)
		);
		CREATE TABLE IF NOT EXISTS bindings (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			pos INTEGER NOT NULL
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

	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
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

// AppendHistory appends a line to a session's history.
func (s *SQLite) AppendHistory(session, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO history (session, seq, line)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ? FROM history WHERE session = ?
	`, session, line, session)
	return err
}

// History returns a session's lines, oldest first.
func (s *SQLite) History(session string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	var err error
	if limit > 0 {
		// Take the newest limit rows, then flip them back to oldest-first.
		rows, err = s.db.Query(`
			SELECT seq, line, ts FROM (
				SELECT seq, line, ts FROM history WHERE session = ?
				ORDER BY seq DESC LIMIT ?
			) ORDER BY seq ASC
		`, session, limit)
	} else {
		rows, err = s.db.Query(
			"SELECT seq, line, ts FROM history WHERE session = ? ORDER BY seq ASC",
			session,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Session: session}
		if err := rows.Scan(&e.Seq, &e.Line, &e.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Recent returns the most recent lines across all sessions, oldest first.
// Insertion order is global, so rowid gives recency across sessions.
func (s *SQLite) Recent(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(`
			SELECT session, seq, line, ts FROM (
				SELECT rowid, session, seq, line, ts FROM history
				ORDER BY rowid DESC LIMIT ?
			) ORDER BY rowid ASC
		`, limit)
	} else {
		rows, err = s.db.Query("SELECT session, seq, line, ts FROM history ORDER BY rowid ASC")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Session, &e.Seq, &e.Line, &e.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PutBinding stores a binding, overwriting any previous one by name. The
// original position is kept on overwrite so Bindings stays in first-stored
// order.
func (s *SQLite) PutBinding(name, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO bindings (name, source, pos)
		SELECT ?, ?, COALESCE(MAX(pos), 0) + 1 FROM bindings WHERE true
		ON CONFLICT(name) DO UPDATE SET source = excluded.source
	`, name, source)
	return err
}

// DeleteBinding removes a binding by name.
func (s *SQLite) DeleteBinding(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM bindings WHERE name = ?", name)
	return err
}

// Bindings returns all bindings in the order they were first stored.
func (s *SQLite) Bindings() ([]Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, source FROM bindings ORDER BY pos ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []Binding
	for rows.Next() {
		var b Binding
		if err := rows.Scan(&b.Name, &b.Source); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
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

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
