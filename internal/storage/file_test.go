package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFileStore_RequiresDirectory(t *testing.T) {
	_, err := NewFileStore("  ")
	require.Error(t, err)
}

func TestFileStore_GetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	data, ok, err := store.Get("koatrip_saved_chats")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, data)
}

func TestFileStore_SetThenGet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("koatrip_saved_chats", []byte(`[{"id":"chat-1"}]`)))

	data, ok, err := store.Get("koatrip_saved_chats")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"chat-1"}]`, string(data))

	// Each blob lives in its own file; no temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "koatrip_saved_chats.json", entries[0].Name())
}

func TestFileStore_SetOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("koatrip_saved_trips", []byte(`[]`)))
	require.NoError(t, store.Set("koatrip_saved_trips", []byte(`[{"id":"trip-1"}]`)))

	data, ok, err := store.Get("koatrip_saved_trips")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"trip-1"}]`, string(data))
}

func TestFileStore_BlobsAreIndependent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("koatrip_saved_chats", []byte(`["a"]`)))
	require.NoError(t, store.Set("koatrip_saved_trips", []byte(`["b"]`)))

	chats, _, err := store.Get("koatrip_saved_chats")
	require.NoError(t, err)
	trips, _, err := store.Get("koatrip_saved_trips")
	require.NoError(t, err)
	require.NotEqual(t, string(chats), string(trips))
}

func TestNewFileStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "koatrip")
	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
