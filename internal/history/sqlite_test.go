package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_AddThenList(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	entry, err := store.Add(ctx, testResult("Guessed", 72), "Night Cream")
	require.NoError(t, err)
	assert.Equal(t, "Night Cream", entry.Result.ProductName)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entry.ID, items[0].ID)
	assert.Equal(t, "Night Cream", items[0].Name)
	assert.Equal(t, entry.Result, items[0].Result)
}

func TestSQLiteStore_NewestFirst(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := store.Add(ctx, testResult(name, 50), name)
		require.NoError(t, err)
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Name)
	assert.Equal(t, "first", items[2].Name)
}

func TestSQLiteStore_AddRequiresName(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Add(context.Background(), testResult("X", 50), "")
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestSQLiteStore_RemoveAndClear(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := store.Add(ctx, testResult("A", 10), "a")
	require.NoError(t, err)
	_, err = store.Add(ctx, testResult("B", 20), "b")
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, a.ID))
	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Name)

	require.NoError(t, store.Remove(ctx, "no-such-id"))

	require.NoError(t, store.Clear(ctx))
	items, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = store.Add(ctx, testResult("A", 90), "persisted")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "persisted", items[0].Name)
}

func TestNew_Factory(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := New("file", filepath.Join(dir, "h.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, fileStore)

	sqliteStore, err := New("sqlite", filepath.Join(dir, "h.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, sqliteStore)
	sqliteStore.Close()

	_, err = New("redis", "")
	require.Error(t, err)
}
