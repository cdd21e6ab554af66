package dfs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
)

func TestCatalog_SetAndGet(t *testing.T) {
	c, err := dfs.OpenCatalog("")
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Replication("/opt/pentaho")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetReplication("/opt/pentaho", 10))
	require.NoError(t, c.SetReplication("/opt/pentaho", 3))
	r, ok, err := c.Replication("/opt/pentaho")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, r)
}

func TestCatalog_ForgetSubtree(t *testing.T) {
	c, err := dfs.OpenCatalog("")
	require.NoError(t, err)
	defer c.Close()

	for _, p := range []string{"/a", "/a/b", "/a/b/c.jar", "/ab", "/z"} {
		require.NoError(t, c.SetReplication(p, 2))
	}
	require.NoError(t, c.Forget("/a"))

	for _, p := range []string{"/a", "/a/b", "/a/b/c.jar"} {
		_, ok, err := c.Replication(p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}
	for _, p := range []string{"/ab", "/z"} {
		_, ok, err := c.Replication(p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}

	require.NoError(t, c.Forget("/"))
	_, ok, err := c.Replication("/z")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_PersistsOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := dfs.OpenCatalog(path)
	require.NoError(t, err)
	require.NoError(t, c.SetReplication("/lib/a.jar", 7))
	require.NoError(t, c.Close())

	c, err = dfs.OpenCatalog(path)
	require.NoError(t, err)
	defer c.Close()
	r, ok, err := c.Replication("/lib/a.jar")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, r)
}
