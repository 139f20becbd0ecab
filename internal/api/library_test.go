package api

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/comix-bridge/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryResolve(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.cbz"), []byte("x"), 0o600))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "series"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "series", "one.cbz"), []byte("x"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.cbz"), filepath.Join(root, "escape.cbz")))

	lib, err := NewLibrary(root)
	require.NoError(t, err)

	got, err := lib.Resolve("series/one.cbz")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Root(), "series", "one.cbz"), got)

	_, err = lib.Resolve("../secret.cbz")
	assert.ErrorIs(t, err, ErrOutsideLibrary)

	_, err = lib.Resolve("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideLibrary)

	_, err = lib.Resolve("escape.cbz")
	assert.ErrorIs(t, err, ErrOutsideLibrary)

	_, err = lib.Resolve("series/missing.cbz")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = lib.Resolve("series")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestLibraryOpen(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "one.cbz"), []byte("data"), 0o600))

	lib, err := NewLibrary(root)
	require.NoError(t, err)

	fd, path, err := lib.Open("one.cbz")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fd, 0)
	assert.Equal(t, filepath.Join(lib.Root(), "one.cbz"), path)
	assert.NoError(t, resource.CloseDescriptor(fd))

	fd, _, err = lib.Open("../one.cbz")
	assert.ErrorIs(t, err, ErrOutsideLibrary)
	assert.Equal(t, -1, fd)
}

func TestNewLibraryRejectsFiles(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := NewLibrary(file)
	assert.Error(t, err)

	_, err = NewLibrary(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
