package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "koatrip.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(" ")
	require.Error(t, err)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestSQLiteStore(t)

	data, ok, err := store.Get("koatrip_saved_chats")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, data)
}

func TestSQLiteStore_SetThenGet(t *testing.T) {
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Set("koatrip_saved_chats", []byte(`[{"id":"chat-1"}]`)))

	data, ok, err := store.Get("koatrip_saved_chats")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"chat-1"}]`, string(data))
}

func TestSQLiteStore_SetOverwrites(t *testing.T) {
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Set("koatrip_saved_trips", []byte(`[]`)))
	require.NoError(t, store.Set("koatrip_saved_trips", []byte(`[{"id":"trip-1"}]`)))

	data, _, err := store.Get("koatrip_saved_trips")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"trip-1"}]`, string(data))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "koatrip.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("koatrip_saved_chats", []byte(`["a"]`)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.Get("koatrip_saved_chats")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["a"]`, string(data))
}
