package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseReadWrite(t *testing.T) {
	database, err := Open(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	_, ok, err := database.Read([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, database.Write([]byte("key"), []byte("value")))

	value, ok, err := database.Read([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), value)

	// Writes overwrite.
	require.NoError(t, database.Write([]byte("key"), []byte("value2")))
	value, ok, err = database.Read([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value2"), value)
}

func TestMemStorageReadWrite(t *testing.T) {
	storage := NewMemStorage()

	_, ok, err := storage.Read([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, storage.Write([]byte("key"), []byte("value")))

	value, ok, err := storage.Read([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), value)
}

func TestMemStorageCopiesValues(t *testing.T) {
	storage := NewMemStorage()

	original := []byte("value")
	require.NoError(t, storage.Write([]byte("key"), original))
	original[0] = 'x'

	value, ok, err := storage.Read([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), value)

	// Mutating the returned slice must not affect the stored copy.
	value[0] = 'y'
	again, _, err := storage.Read([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}
