package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
-- Dragon Ball characters, one row per unique name
CREATE TABLE IF NOT EXISTS characters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

-- Quotes, keyed loosely by character name (no foreign key: quotes may
-- reference characters that were never added)
CREATE TABLE IF NOT EXISTS quotes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	character TEXT NOT NULL,
	quote TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quotes_character ON quotes(character);

-- Audit log
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	user_id TEXT NOT NULL,
	timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	details TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_log(user_id);
`

var (
	// ErrDuplicateName is returned when a character name is already taken
	ErrDuplicateName = errors.New("character already exists")
	// ErrNotFound is returned when a point lookup matches no row
	ErrNotFound = errors.New("not found")
	// ErrNoQuotes is returned by RandomQuote when the quotes table is empty
	ErrNoQuotes = errors.New("no quotes")
)

type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Initialize schema
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Character represents a stored Dragon Ball character
type Character struct {
	ID          int
	Name        string
	Description string
}

// Quote represents a single quote attributed to a character
type Quote struct {
	ID        int
	Character string
	Text      string
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        int
	Action    string
	UserID    string
	Timestamp time.Time
	Details   string
}

// Stats holds row counts for the /stats command
type Stats struct {
	Characters int
	Quotes     int
}
