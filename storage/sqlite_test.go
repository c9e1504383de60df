package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/typedprefs"
)

// setupSQLiteTest creates a SQLite database in a temporary directory.
func setupSQLiteTest(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "Failed to initialize SQLiteStorage")
	t.Cleanup(func() {
		assert.NoError(t, storage.Close(), "Failed to close storage")
	})
	return storage
}

func TestSQLiteStorage_RoundTripsEveryType(t *testing.T) {
	storage := setupSQLiteTest(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	tests := []struct {
		name  string
		typ   typedprefs.ValueType
		value any
	}{
		{"server_url", typedprefs.StringType, "https://example.com"},
		{"number_of_rows", typedprefs.IntType, int32(-1)},
		{"show_images", typedprefs.BoolType, true},
		{"primary_color", typedprefs.ColorType, typedprefs.Color(0xFF3F51B5)},
		{"request_types", typedprefs.StringSetType, []string{"GET", "POST"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.Set(ctx, &typedprefs.Preference{
				Key:       tt.name,
				Type:      tt.typ,
				Value:     tt.value,
				UpdatedAt: now,
			})
			require.NoError(t, err)

			got, err := storage.Get(ctx, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, got.Type)
			assert.Equal(t, tt.value, got.Value)
			assert.Equal(t, now.Unix(), got.UpdatedAt.Unix())
		})
	}

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(tests))
}

func TestSQLiteStorage_Upsert(t *testing.T) {
	storage := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, &typedprefs.Preference{Key: "request_agent", Type: typedprefs.StringType, Value: "v1", UpdatedAt: time.Now()}))
	require.NoError(t, storage.Set(ctx, &typedprefs.Preference{Key: "request_agent", Type: typedprefs.StringType, Value: "v2", UpdatedAt: time.Now()}))

	got, err := storage.Get(ctx, "request_agent")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Value)
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	storage := setupSQLiteTest(t)
	ctx := context.Background()

	_, err := storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, typedprefs.ErrNotFound)

	err = storage.Delete(ctx, "missing")
	assert.ErrorIs(t, err, typedprefs.ErrNotFound)
}

func TestSQLiteStorage_DeleteAndClear(t *testing.T) {
	storage := setupSQLiteTest(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, storage.Set(ctx, &typedprefs.Preference{Key: key, Type: typedprefs.BoolType, Value: false, UpdatedAt: time.Now()}))
	}

	require.NoError(t, storage.Delete(ctx, "a"))
	_, err := storage.Get(ctx, "a")
	assert.ErrorIs(t, err, typedprefs.ErrNotFound)

	require.NoError(t, storage.Clear(ctx))
	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStorage_CorruptValue(t *testing.T) {
	storage := setupSQLiteTest(t)
	ctx := context.Background()

	_, err := storage.db.ExecContext(ctx,
		"INSERT INTO preferences (key, value, type, updated_at) VALUES (?, ?, ?, ?)",
		"broken", "not_json", "int", time.Now())
	require.NoError(t, err)

	_, err = storage.Get(ctx, "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, typedprefs.ErrSerialization)
	assert.Contains(t, err.Error(), "sqlite: failed to unmarshal value for key 'broken'")
}

func TestSQLiteStorage_UnencodableValue(t *testing.T) {
	storage := setupSQLiteTest(t)

	err := storage.Set(context.Background(), &typedprefs.Preference{
		Key:   "chan",
		Type:  typedprefs.StringType,
		Value: make(chan int),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, typedprefs.ErrSerialization)
}
