package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// AddCharacter inserts a new character. The UNIQUE constraint on name is the
// only duplicate check; a conflict leaves the existing row untouched.
func (db *DB) AddCharacter(ctx context.Context, name, description, addedBy string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO characters (name, description) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, query, name, description); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%q: %w", name, ErrDuplicateName)
		}
		return fmt.Errorf("failed to insert character: %w", err)
	}

	if err := logAction(ctx, tx, "add_character", addedBy, map[string]any{"name": name}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCharacter looks up a character by exact name
func (db *DB) GetCharacter(ctx context.Context, name string) (*Character, error) {
	query := `SELECT id, name, description FROM characters WHERE name = ?`

	var c Character
	err := db.conn.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.Description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("character %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query character: %w", err)
	}

	return &c, nil
}

// ListCharacterNames returns every character name in insertion order
func (db *DB) ListCharacterNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name FROM characters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// AddQuote stores a quote for a character. The character does not have to exist.
func (db *DB) AddQuote(ctx context.Context, character, text, addedBy string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO quotes (character, quote) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, query, character, text); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := logAction(ctx, tx, "add_quote", addedBy, map[string]any{"character": character}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetQuotes returns all quotes for a character, oldest first.
// An unknown character yields an empty slice, not an error.
func (db *DB) GetQuotes(ctx context.Context, character string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT quote FROM quotes WHERE character = ? ORDER BY id ASC`, character)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

// RandomQuote picks one stored quote uniformly at random
func (db *DB) RandomQuote(ctx context.Context) (*Quote, error) {
	query := `SELECT id, character, quote FROM quotes ORDER BY RANDOM() LIMIT 1`

	var q Quote
	err := db.conn.QueryRowContext(ctx, query).Scan(&q.ID, &q.Character, &q.Text)
	if err == sql.ErrNoRows {
		return nil, ErrNoQuotes
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query random quote: %w", err)
	}

	return &q, nil
}

// GetStats returns row counts for characters and quotes
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&stats.Characters)
	if err != nil {
		return nil, err
	}

	err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&stats.Quotes)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetAuditLog returns the most recent audit entries, newest first
func (db *DB) GetAuditLog(ctx context.Context, limit int) ([]AuditLog, error) {
	query := `
		SELECT id, action, user_id, timestamp, COALESCE(details, '')
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditLog
	for rows.Next() {
		var e AuditLog
		if err := rows.Scan(&e.ID, &e.Action, &e.UserID, &e.Timestamp, &e.Details); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func logAction(ctx context.Context, tx *sql.Tx, action, userID string, details map[string]any) error {
	if userID == "" {
		userID = "system"
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	auditQuery := `
		INSERT INTO audit_log (action, user_id, details)
		VALUES (?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, auditQuery, action, userID, string(payload)); err != nil {
		return fmt.Errorf("failed to log action: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
