package classpath_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/internal/classpath"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func newFS(t *testing.T) *dfs.LocalFileSystem {
	t.Helper()
	fs, err := dfs.NewLocalFileSystem(t.TempDir(), "", hadoop.NewConfiguration(map[string]string{
		model.KeyDefaultFS: "hdfs://namenode:8020",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func touch(t *testing.T, fs dfs.FileSystem, p string) {
	t.Helper()
	w, err := fs.Create(hadoop.MustPath(p), true)
	require.NoError(t, err)
	_, err = io.WriteString(w, p)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestDisqualifyPath(t *testing.T) {
	p := classpath.DisqualifyPath(hadoop.MustPath("hdfs://namenode:8020/opt/pentaho/lib/a.jar"))
	assert.Equal(t, "/opt/pentaho/lib/a.jar", p.String())
}

func TestNotLibFiles(t *testing.T) {
	assert.True(t, classpath.NotLibFiles("hdfs://nn/opt/pentaho/plugins"))
	assert.True(t, classpath.NotLibFiles("hdfs://nn/opt/pentaho/classes"))
	assert.False(t, classpath.NotLibFiles("hdfs://nn/opt/pentaho/lib"))
	assert.False(t, classpath.NotLibFiles("hdfs://nn/opt/pentaho/libraries"))
}

func TestAddFileToClasspath_DefaultSeparator(t *testing.T) {
	r := classpath.NewRegistrar(newFS(t), "")
	conf := hadoop.NewConfiguration(nil)

	r.AddFileToClasspath(hadoop.MustPath("hdfs://namenode:8020/opt/lib/a.jar"), conf)
	r.AddFileToClasspath(hadoop.MustPath("/opt/lib/b.jar"), conf)

	assert.Equal(t, "/opt/lib/a.jar,/opt/lib/b.jar", conf.Get(model.KeyClasspathFiles))
	assert.Equal(t, []string{
		"hdfs://namenode:8020/opt/lib/a.jar",
		"hdfs://namenode:8020/opt/lib/b.jar",
	}, hadoop.CacheFiles(conf))
	assert.False(t, hadoop.SymlinkEnabled(conf))
}

func TestAddFileToClasspath_CustomSeparator(t *testing.T) {
	r := classpath.NewRegistrar(newFS(t), ":")
	assert.Equal(t, ":", r.Separator())
	conf := hadoop.NewConfiguration(nil)
	r.AddCachedFilesToClasspath([]hadoop.Path{
		hadoop.MustPath("/opt/lib/a.jar"),
		hadoop.MustPath("/opt/lib/b.jar"),
	}, conf)
	assert.Equal(t, "/opt/lib/a.jar:/opt/lib/b.jar", conf.Get(model.KeyClasspathFiles))
	assert.True(t, hadoop.SymlinkEnabled(conf))
}

func TestAddCachedFiles_Fragment(t *testing.T) {
	r := classpath.NewRegistrar(newFS(t), "")
	conf := hadoop.NewConfiguration(nil)
	r.AddCachedFiles([]hadoop.Path{hadoop.MustPath("hdfs://namenode:8020/opt/pentaho/plugins")}, conf)

	assert.Equal(t, []string{"hdfs://namenode:8020/opt/pentaho/plugins#plugins"}, hadoop.CacheFiles(conf))
	assert.True(t, hadoop.SymlinkEnabled(conf))
	_, ok := conf.Lookup(model.KeyClasspathFiles)
	assert.False(t, ok)
}

func TestFindFiles(t *testing.T) {
	fs := newFS(t)
	touch(t, fs, "/opt/pentaho/lib/a.jar")
	touch(t, fs, "/opt/pentaho/classes/log4j.xml")
	touch(t, fs, "/opt/pentaho/.lock")

	all, err := classpath.FindFiles(fs, hadoop.MustPath("/opt/pentaho"), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	nonLib, err := classpath.FindFiles(fs, hadoop.MustPath("/opt/pentaho"), classpath.NotLibFiles)
	require.NoError(t, err)
	require.Len(t, nonLib, 2)
	assert.Equal(t, "hdfs://namenode:8020/opt/pentaho/.lock", nonLib[0].String())
	assert.Equal(t, "hdfs://namenode:8020/opt/pentaho/classes", nonLib[1].String())

	_, err = classpath.FindFiles(fs, hadoop.MustPath("/missing"), nil)
	assert.Error(t, err)
}

func TestConfigureWithKettleEnvironment(t *testing.T) {
	fs := newFS(t)
	touch(t, fs, "/opt/pentaho/lib/kettle-core.jar")
	touch(t, fs, "/opt/pentaho/lib/kettle-engine.jar")
	touch(t, fs, "/opt/pentaho/plugins/p/plugin.xml")
	touch(t, fs, "/opt/pentaho/classes/log4j.xml")

	r := classpath.NewRegistrar(fs, "")
	conf := hadoop.NewConfiguration(nil)
	require.NoError(t, r.ConfigureWithKettleEnvironment(conf, hadoop.MustPath("/opt/pentaho")))

	assert.Equal(t, []string{"/opt/pentaho/lib/kettle-core.jar", "/opt/pentaho/lib/kettle-engine.jar"},
		hadoop.ClasspathFiles(conf, ","))
	assert.Equal(t, []string{
		"hdfs://namenode:8020/opt/pentaho/lib/kettle-core.jar",
		"hdfs://namenode:8020/opt/pentaho/lib/kettle-engine.jar",
		"hdfs://namenode:8020/opt/pentaho/classes#classes",
		"hdfs://namenode:8020/opt/pentaho/plugins#plugins",
	}, hadoop.CacheFiles(conf))
	assert.True(t, hadoop.SymlinkEnabled(conf))
}
