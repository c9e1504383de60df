package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/typedprefs"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT NOT NULL PRIMARY KEY,
			value JSONB NOT NULL,
			type TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	insertSQL = `
		INSERT INTO preferences (key, value, type, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key)
		DO UPDATE SET value = $2, type = $3, updated_at = $4
	`

	selectSQL = `
		SELECT key, value, type, updated_at
		FROM preferences
		WHERE key = $1
	`

	selectAllSQL = `
		SELECT key, value, type, updated_at
		FROM preferences
	`

	deleteSQL = `
		DELETE FROM preferences
		WHERE key = $1
	`

	clearSQL = `DELETE FROM preferences`
)

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects using connString and runs migrations.
func NewPostgresStorage(connString string) (*PostgresStorage, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return storage, nil
}

// migrate runs the necessary database migrations.
func (s *PostgresStorage) migrate() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Get retrieves a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *PostgresStorage) Get(ctx context.Context, key string) (*typedprefs.Preference, error) {
	var (
		pref      typedprefs.Preference
		valueJSON []byte
		valueType string
	)

	err := s.db.QueryRowContext(ctx, selectSQL, key).Scan(
		&pref.Key,
		&valueJSON,
		&valueType,
		&pref.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, typedprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan preference '%s': %w", key, err)
	}

	pref.Type = typedprefs.ValueType(valueType)
	pref.Value, err = typedprefs.DecodeValue(pref.Type, valueJSON)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal value for key '%s': %w", key, err)
	}

	return &pref, nil
}

// Set stores or updates a preference.
func (s *PostgresStorage) Set(ctx context.Context, pref *typedprefs.Preference) error {
	valueJSON, err := typedprefs.EncodeValue(pref.Value)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal value for key '%s': %w", pref.Key, err)
	}

	_, err = s.db.ExecContext(ctx, insertSQL,
		pref.Key,
		valueJSON,
		string(pref.Type),
		pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute insert/update for key '%s': %w", pref.Key, err)
	}

	return nil
}

// GetAll retrieves all stored preferences.
func (s *PostgresStorage) GetAll(ctx context.Context) (map[string]*typedprefs.Preference, error) {
	rows, err := s.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query all preferences: %w", err)
	}
	return s.scanPreferences(rows)
}

// Delete removes a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, deleteSQL, key)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute delete for key '%s': %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: failed to get affected rows for delete key '%s': %w", key, err)
	}
	if rowsAffected == 0 {
		return typedprefs.ErrNotFound
	}

	return nil
}

// Clear removes every preference.
func (s *PostgresStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, clearSQL); err != nil {
		return fmt.Errorf("postgres: failed to clear preferences: %w", err)
	}
	return nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// scanPreferences scans rows into a map keyed by preference key and closes rows.
func (s *PostgresStorage) scanPreferences(rows *sql.Rows) (map[string]*typedprefs.Preference, error) {
	defer rows.Close()

	prefs := make(map[string]*typedprefs.Preference)
	for rows.Next() {
		var (
			pref      typedprefs.Preference
			valueJSON []byte
			valueType string
		)
		if err := rows.Scan(&pref.Key, &valueJSON, &valueType, &pref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan preference row: %w", err)
		}

		pref.Type = typedprefs.ValueType(valueType)
		value, err := typedprefs.DecodeValue(pref.Type, valueJSON)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal value for key '%s' during scan: %w", pref.Key, err)
		}
		pref.Value = value
		prefs[pref.Key] = &pref
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: error iterating preference rows: %w", err)
	}
	return prefs, nil
}
