package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/fsutil"
)

func TestAtomicWrite_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, fsutil.AtomicWrite(path, []byte("temp_dir: /tmp\n"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "temp_dir: /tmp\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestAtomicWrite_MissingDir(t *testing.T) {
	err := fsutil.AtomicWrite(filepath.Join(t.TempDir(), "nope", "f"), []byte("x"), 0644)
	assert.Error(t, err)
}

func TestUniqueName_DoesNotCreate(t *testing.T) {
	dir := t.TempDir()
	a := fsutil.UniqueName(dir)
	b := fsutil.UniqueName(dir)

	assert.NotEqual(t, a, b)
	assert.Equal(t, dir, filepath.Dir(a))
	assert.Empty(t, filepath.Ext(a))
	_, err := os.Stat(a)
	assert.True(t, os.IsNotExist(err))
}

func TestPrivateTempDir_Mode(t *testing.T) {
	path, err := fsutil.PrivateTempDir(t.TempDir())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
