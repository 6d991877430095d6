package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTripAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	store, err := OpenFile(path)
	require.NoError(t, err)
	_, ok := store.Get(ViewModeKey)
	assert.False(t, ok, "fresh store should be empty")

	require.NoError(t, store.Set(ViewModeKey, "continuous"))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	value, ok := reopened.Get(ViewModeKey)
	require.True(t, ok)
	assert.Equal(t, "continuous", value)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFile(filepath.Join(dir, "prefs.toml"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ViewModeKey, "paginated"))
	require.NoError(t, store.Set(ViewModeKey, "continuous"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "prefs.toml", entries[0].Name())
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("pdfViewMode = \n"), 0o644))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestFileStoreKeepsValueWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	store := &FileStore{path: filepath.Join(blocker, "prefs.toml"), values: map[string]string{}}

	err := store.Set(ViewModeKey, "continuous")
	assert.Error(t, err)
	value, ok := store.Get(ViewModeKey)
	assert.True(t, ok)
	assert.Equal(t, "continuous", value)
}

func TestMemoryStoreCountsWrites(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("a", "2"))
	value, _ := store.Get("a")
	assert.Equal(t, "2", value)
	assert.Equal(t, 2, store.Writes())
}
