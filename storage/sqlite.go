package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/typedprefs"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			type TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	sqliteInsertSQL = `
		INSERT INTO preferences (key, value, type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key)
		DO UPDATE SET value = excluded.value, type = excluded.type, updated_at = excluded.updated_at
	`

	sqliteSelectSQL = `
		SELECT key, value, type, updated_at
		FROM preferences
		WHERE key = ?
	`

	sqliteSelectAllSQL = `
		SELECT key, value, type, updated_at
		FROM preferences
	`

	sqliteDeleteSQL = `
		DELETE FROM preferences
		WHERE key = ?
	`

	sqliteClearSQL = `DELETE FROM preferences`
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return storage, nil
}

// migrate runs the necessary database migrations.
func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Get retrieves a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *SQLiteStorage) Get(ctx context.Context, key string) (*typedprefs.Preference, error) {
	var (
		pref      typedprefs.Preference
		valueJSON string
		valueType string
	)

	err := s.db.QueryRowContext(ctx, sqliteSelectSQL, key).Scan(
		&pref.Key,
		&valueJSON,
		&valueType,
		&pref.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, typedprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get preference '%s': %w", key, err)
	}

	pref.Type = typedprefs.ValueType(valueType)
	pref.Value, err = typedprefs.DecodeValue(pref.Type, []byte(valueJSON))
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to unmarshal value for key '%s': %w", key, err)
	}

	return &pref, nil
}

// Set stores or updates a preference.
func (s *SQLiteStorage) Set(ctx context.Context, pref *typedprefs.Preference) error {
	valueJSON, err := typedprefs.EncodeValue(pref.Value)
	if err != nil {
		return fmt.Errorf("sqlite: failed to marshal value for key '%s': %w", pref.Key, err)
	}

	_, err = s.db.ExecContext(ctx, sqliteInsertSQL,
		pref.Key,
		string(valueJSON),
		string(pref.Type),
		pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to set preference '%s': %w", pref.Key, err)
	}

	return nil
}

// GetAll retrieves all stored preferences.
func (s *SQLiteStorage) GetAll(ctx context.Context) (map[string]*typedprefs.Preference, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]*typedprefs.Preference)
	for rows.Next() {
		var (
			pref      typedprefs.Preference
			valueJSON string
			valueType string
		)
		if err := rows.Scan(&pref.Key, &valueJSON, &valueType, &pref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan preference: %w", err)
		}

		pref.Type = typedprefs.ValueType(valueType)
		pref.Value, err = typedprefs.DecodeValue(pref.Type, []byte(valueJSON))
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to unmarshal value for key '%s': %w", pref.Key, err)
		}
		prefs[pref.Key] = &pref
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: error iterating rows: %w", err)
	}
	return prefs, nil
}

// Delete removes a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, sqliteDeleteSQL, key)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete preference '%s': %w", key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return typedprefs.ErrNotFound
	}

	return nil
}

// Clear removes every preference.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteClearSQL); err != nil {
		return fmt.Errorf("sqlite: failed to clear preferences: %w", err)
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
