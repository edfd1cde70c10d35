package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"tareas/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tareas", "token")
	store := client.NewFileTokenStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no token")

	require.NoError(t, store.Save("abc.def.ghi"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMemoryTokenStore(t *testing.T) {
	var store client.MemoryTokenStore

	require.NoError(t, store.Save("t1"))
	token, _ := store.Load()
	assert.Equal(t, "t1", token)

	require.NoError(t, store.Clear())
	token, _ = store.Load()
	assert.Empty(t, token)
}
