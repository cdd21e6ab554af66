package stager_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/internal/stager"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func newFS(t *testing.T, props map[string]string) *dfs.LocalFileSystem {
	t.Helper()
	fs, err := dfs.NewLocalFileSystem(t.TempDir(), "", hadoop.NewConfiguration(props))
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func writeLocal(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestStageForCache_DefaultReplicationAndPrivate(t *testing.T) {
	fs := newFS(t, nil)
	src := writeLocal(t, t.TempDir(), "kettle-core.jar", "core")
	dest := hadoop.MustPath("/opt/pentaho/lib/kettle-core.jar")

	s := stager.New(fs, stager.WithTempDir(t.TempDir()))
	require.NoError(t, s.StageForCache(src, dest, "", false, false))

	st, err := fs.GetFileStatus(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(model.PermissionPrivate), st.Permission)
	assert.Equal(t, model.DefaultReplication, st.Replication)
}

func TestStageForCache_PublicAndConfiguredReplication(t *testing.T) {
	fs := newFS(t, map[string]string{model.KeySubmitReplication: "4"})
	src := t.TempDir()
	writeLocal(t, src, "a/b.jar", "b")
	dest := hadoop.MustPath("/public")

	s := stager.New(fs)
	require.NoError(t, s.StageForCache(src, dest, "", false, true))

	st, err := fs.GetFileStatus(dest)
	require.NoError(t, err)
	assert.True(t, st.IsDir)
	assert.Equal(t, os.FileMode(model.PermissionPublic), st.Permission)
	assert.Equal(t, 4, st.Replication)
	assert.FileExists(t, filepath.Join(fs.Root(), "public", "a", "b.jar"))
}

func TestStageForCache_SourceNotFound(t *testing.T) {
	fs := newFS(t, nil)
	s := stager.New(fs)
	err := s.StageForCache(filepath.Join(t.TempDir(), "missing"), hadoop.MustPath("/x"), "", true, false)
	assert.ErrorIs(t, err, errclass.ErrSourceNotFound)
}

func TestStageForCache_DestinationExistsUnchanged(t *testing.T) {
	fs := newFS(t, nil)
	dest := hadoop.MustPath("/lib/a.jar")
	w, err := fs.Create(dest, true)
	require.NoError(t, err)
	_, err = w.Write([]byte("original"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	src := writeLocal(t, t.TempDir(), "a.jar", "replacement")
	s := stager.New(fs)
	err = s.StageForCache(src, dest, "", false, false)
	assert.ErrorIs(t, err, errclass.ErrDestinationExists)

	data, err := os.ReadFile(filepath.Join(fs.Root(), "lib", "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestStageForCache_OverwriteReplacesTree(t *testing.T) {
	fs := newFS(t, nil)
	old := t.TempDir()
	writeLocal(t, old, "stale.jar", "s")
	s := stager.New(fs)
	require.NoError(t, s.StageForCache(old, hadoop.MustPath("/plugins/p"), "", false, false))

	fresh := t.TempDir()
	writeLocal(t, fresh, "fresh.jar", "f")
	require.NoError(t, s.StageForCache(fresh, hadoop.MustPath("/plugins/p"), "", true, false))

	assert.NoFileExists(t, filepath.Join(fs.Root(), "plugins", "p", "stale.jar"))
	assert.FileExists(t, filepath.Join(fs.Root(), "plugins", "p", "fresh.jar"))
}

func TestStageForCache_ConfigPropertiesFiltered(t *testing.T) {
	fs := newFS(t, nil)
	src := writeLocal(t, t.TempDir(), model.ConfigPropertiesFile,
		"a=1\npentaho.authentication.default.kerberos.principal=x\nb=2\npentaho.authentication.keytab=y")
	dest := hadoop.MustPath("/plugins/big-data/config.properties")

	s := stager.New(fs)
	require.NoError(t, s.StageForCache(src, dest, "", true, false))

	data, err := os.ReadFile(filepath.Join(fs.Root(), "plugins", "big-data", "config.properties"))
	require.NoError(t, err)
	assert.Equal(t, "a=1\nb=2\n", string(data))
}

func TestStageForCache_ExclusionOnPrivateCopy(t *testing.T) {
	fs := newFS(t, nil)
	src := t.TempDir()
	writeLocal(t, src, "lib/foo-1.0.jar", "f")
	writeLocal(t, src, "lib/bar-1.0.jar", "b")
	writeLocal(t, src, "lib/foo-notes.txt", "n")
	tmp := t.TempDir()

	s := stager.New(fs, stager.WithTempDir(tmp))
	require.NoError(t, s.StageForCache(src, hadoop.MustPath("/plugins/p"), "foo", true, false))

	staged := filepath.Join(fs.Root(), "plugins", "p", "lib")
	assert.NoFileExists(t, filepath.Join(staged, "foo-1.0.jar"))
	assert.FileExists(t, filepath.Join(staged, "bar-1.0.jar"))
	assert.FileExists(t, filepath.Join(staged, "foo-notes.txt"))

	// The source tree and temp dir are left untouched and empty respectively.
	assert.FileExists(t, filepath.Join(src, "lib", "foo-1.0.jar"))
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStageForCache_LinkedFolderStagesContent(t *testing.T) {
	fs := newFS(t, nil)
	real := t.TempDir()
	writeLocal(t, real, "lib/foo-1.0.jar", "f")
	writeLocal(t, real, "lib/bar-1.0.jar", "b")
	roots := t.TempDir()
	linked := filepath.Join(roots, "linked")
	require.NoError(t, os.Symlink(real, linked))
	require.NoError(t, os.Chmod(real, 0o700))

	s := stager.New(fs, stager.WithTempDir(t.TempDir()))
	require.NoError(t, s.StageForCache(linked, hadoop.MustPath("/plugins/linked"), "foo", true, false))

	assert.FileExists(t, filepath.Join(real, "lib", "foo-1.0.jar"))
	info, err := os.Stat(real)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	staged := filepath.Join(fs.Root(), "plugins", "linked")
	linfo, err := os.Lstat(staged)
	require.NoError(t, err)
	assert.Zero(t, linfo.Mode()&os.ModeSymlink)
	assert.True(t, linfo.IsDir())
	assert.FileExists(t, filepath.Join(staged, "lib", "bar-1.0.jar"))
	assert.NoFileExists(t, filepath.Join(staged, "lib", "foo-1.0.jar"))
}

func TestStageForCache_LinkedFileWithoutExclusions(t *testing.T) {
	fs := newFS(t, nil)
	real := writeLocal(t, t.TempDir(), "core.jar", "jar")
	linked := filepath.Join(t.TempDir(), "core.jar")
	require.NoError(t, os.Symlink(real, linked))

	s := stager.New(fs)
	require.NoError(t, s.StageForCache(linked, hadoop.MustPath("/lib/core.jar"), "", true, false))

	staged := filepath.Join(fs.Root(), "lib", "core.jar")
	linfo, err := os.Lstat(staged)
	require.NoError(t, err)
	assert.True(t, linfo.Mode().IsRegular())
	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "jar", string(data))
}

func TestStageForCache_PrefixedConfigPropertiesFiltered(t *testing.T) {
	fs := newFS(t, nil)
	src := writeLocal(t, t.TempDir(), "hdp30-config.properties",
		"a=1\npentaho.authentication.default.mapping.server.credentials.kerberos.password=x\n")

	s := stager.New(fs)
	require.NoError(t, s.StageForCache(src, hadoop.MustPath("/conf/hdp30-config.properties"), "", true, false))

	data, err := os.ReadFile(filepath.Join(fs.Root(), "conf", "hdp30-config.properties"))
	require.NoError(t, err)
	assert.Equal(t, "a=1\n", string(data))
}

type failingReplication struct {
	*dfs.LocalFileSystem
}

func (failingReplication) SetReplication(hadoop.Path, int) (bool, error) {
	return false, errors.New("namenode unavailable")
}

func TestStageForCache_ReplicationFailure(t *testing.T) {
	fs := failingReplication{newFS(t, nil)}
	src := writeLocal(t, t.TempDir(), "a.jar", "a")

	s := stager.New(fs)
	err := s.StageForCache(src, hadoop.MustPath("/a.jar"), "", true, false)
	assert.ErrorIs(t, err, errclass.ErrStagingFailed)
	assert.ErrorContains(t, err, "namenode unavailable")
}

func TestStage_Entry(t *testing.T) {
	fs := newFS(t, nil)
	src := writeLocal(t, t.TempDir(), "a.jar", "a")
	s := stager.New(fs)
	require.NoError(t, s.Stage(model.StagedEntry{Source: src, Destination: "/x/a.jar", Public: true}))

	st, err := fs.GetFileStatus(hadoop.MustPath("/x/a.jar"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(model.PermissionPublic), st.Permission)
}
