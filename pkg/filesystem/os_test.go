// Test Type: Unit Test
// Description: Tests for the OS filesystem implementation

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/assetpipe/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFS(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, fs.MkdirAll(nested, 0755))

	file := filepath.Join(nested, "f.txt")
	require.NoError(t, fs.WriteFile(file, []byte("hello"), 0644))
	data, err := fs.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := fs.ReadDir(nested)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Name())

	moved := filepath.Join(dir, "g.txt")
	require.NoError(t, fs.Rename(file, moved))
	_, err = fs.Stat(file)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fs.RemoveAll(filepath.Join(dir, "a")))
	_, err = fs.Stat(nested)
	assert.True(t, os.IsNotExist(err))
}

func TestOSFS_OpenExclusive(t *testing.T) {
	fs := filesystem.NewOS()
	lock := filepath.Join(t.TempDir(), ".lock")

	f, err := fs.OpenExclusive(lock, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("1"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = fs.OpenExclusive(lock, 0644)
	require.Error(t, err)
	assert.True(t, os.IsExist(err))

	require.NoError(t, fs.Remove(lock))
	f, err = fs.OpenExclusive(lock, 0644)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
