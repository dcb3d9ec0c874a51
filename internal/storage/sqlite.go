package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore implements [Store] over one scope of the storage table.
//
// The table is created by the embedded migrations in the shared package.
type SQLiteStore struct {
	db    *sql.DB
	scope Scope
}

// NewSQLiteStore creates a [SQLiteStore] reading and writing rows of scope.
func NewSQLiteStore(db *sql.DB, scope Scope) *SQLiteStore {
	return &SQLiteStore{db: db, scope: scope}
}

// Scope returns the area this store writes to.
func (s *SQLiteStore) Scope() Scope {
	return s.scope
}

// Get retrieves the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM storage WHERE scope = ? AND key = ?", string(s.scope), key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s/%s: %w", s.scope, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO storage (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, string(s.scope), key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// Remove deletes key. Deleting an absent key succeeds.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM storage WHERE scope = ? AND key = ?", string(s.scope), key,
	); err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// List returns every entry in the scope ordered by key.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value, updated_at FROM storage WHERE scope = ? ORDER BY key", string(s.scope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.scope, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Scope: s.scope}
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", s.scope, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry in the scope.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM storage WHERE scope = ?", string(s.scope)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.scope, err)
	}
	return nil
}
