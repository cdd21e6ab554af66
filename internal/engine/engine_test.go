package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/internal/engine"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestCopyEngine_CloneDirectory(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"lib/kettle-core.jar":      "core",
		"plugins/steps/plugin.xml": "<plugin/>",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0755))
	dst := filepath.Join(t.TempDir(), "nested", "cloned")

	result, err := engine.NewCopyEngine().Clone(src, dst)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, int64(len("core")+len("<plugin/>")), result.Bytes)

	data, err := os.ReadFile(filepath.Join(dst, "lib", "kettle-core.jar"))
	require.NoError(t, err)
	assert.Equal(t, "core", string(data))
	assert.DirExists(t, filepath.Join(dst, "empty"))
}

func TestCopyEngine_CloneSingleFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "driver.jar")
	require.NoError(t, os.WriteFile(src, []byte("driver"), 0755))
	dst := filepath.Join(t.TempDir(), "drivers", "driver.jar")

	_, err := engine.NewCopyEngine().Clone(src, dst)
	require.NoError(t, err)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCopyEngine_PreservesSymlinks(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"target.txt": "target"})
	require.NoError(t, os.Symlink("target.txt", filepath.Join(src, "link")))
	dst := filepath.Join(t.TempDir(), "cloned")

	_, err := engine.NewCopyEngine().Clone(src, dst)
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "target.txt", target)
}

func TestCopyEngine_RefusesExistingDestination(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a": "a"})
	dst := t.TempDir()

	_, err := engine.NewCopyEngine().Clone(src, dst)
	assert.Error(t, err)
}

func TestCopyEngine_MissingSource(t *testing.T) {
	_, err := engine.NewCopyEngine().Clone(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

func TestReflinkEngine_CloneFallsBackOrSucceeds(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a/b.jar": "jar-bytes"})
	dst := filepath.Join(t.TempDir(), "cloned")

	result, err := engine.NewReflinkEngine().Clone(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	if result.Degraded {
		assert.Equal(t, []string{"reflink"}, result.Degradations)
	}

	data, err := os.ReadFile(filepath.Join(dst, "a", "b.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))
}

func TestNewEngine(t *testing.T) {
	assert.Equal(t, model.EngineCopy, engine.NewEngine(model.EngineCopy).Name())
	assert.Equal(t, model.EngineReflinkCopy, engine.NewEngine(model.EngineReflinkCopy).Name())
	assert.Equal(t, model.EngineCopy, engine.NewEngine("bogus").Name())
}

func TestParseEngineType(t *testing.T) {
	et, err := engine.ParseEngineType("")
	require.NoError(t, err)
	assert.Equal(t, model.EngineAuto, et)

	et, err = engine.ParseEngineType("reflink-copy")
	require.NoError(t, err)
	assert.Equal(t, model.EngineReflinkCopy, et)

	_, err = engine.ParseEngineType("juicefs")
	assert.Error(t, err)
}

func TestResolve_AutoProbesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	eng := engine.Resolve(model.EngineAuto, dir)
	assert.Contains(t, []model.EngineType{model.EngineCopy, model.EngineReflinkCopy}, eng.Name())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe directory must be removed")
}
