package shims_test

import (
	"archive/zip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/config"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/shims"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/webhook"
)

func writeLocal(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func setup(t *testing.T) *config.Config {
	t.Helper()
	work := t.TempDir()

	archive := filepath.Join(work, "pmr.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"lib/kettle-core.jar", "lib/kettle-engine.jar", "classes/log4j.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	plugins := filepath.Join(work, "plugins")
	writeLocal(t, plugins, "pentaho-big-data-plugin/plugin.xml", "<plugin/>")
	writeLocal(t, plugins, "steps/extra/lib/x.jar", "x")
	require.NoError(t, os.MkdirAll(filepath.Join(work, "tmp"), 0755))

	cfg := config.Default()
	cfg.CopyEngine = string(model.EngineCopy)
	cfg.TempDir = filepath.Join(work, "tmp")
	cfg.JournalPath = filepath.Join(work, "journal.jsonl")
	cfg.DFS.Root = filepath.Join(work, "dfs")
	cfg.DFS.Catalog = filepath.Join(work, "catalog.db")
	cfg.Cluster = map[string]string{
		model.KeyDefaultFS:         "hdfs://namenode:8020",
		model.KeySubmitReplication: "3",
	}
	cfg.Archive = archive
	cfg.Destination = "/opt/pentaho/mapreduce"
	cfg.PluginRoots = []string{plugins}
	cfg.BigDataPlugin = filepath.Join(plugins, "pentaho-big-data-plugin")
	cfg.AdditionalPlugins = "steps/extra"
	return cfg
}

func TestClient_InstallStatusClasspathDoctor(t *testing.T) {
	cfg := setup(t)
	var steps int
	c, err := shims.Open(cfg, shims.WithProgress(func(string, int, int, string) { steps++ }))
	require.NoError(t, err)
	defer c.Close()

	report, err := c.Install(shims.InstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.StateLockReleased, report.State)
	assert.Equal(t, "/opt/pentaho/mapreduce", report.Destination)
	assert.Equal(t, 6, steps)

	status, err := c.Status("/opt/pentaho/mapreduce")
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.Equal(t, "hdfs://namenode:8020/opt/pentaho/mapreduce", status.Root)

	conf, err := c.Classpath("/opt/pentaho/mapreduce")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/opt/pentaho/mapreduce/lib/kettle-core.jar",
		"/opt/pentaho/mapreduce/lib/kettle-engine.jar",
	}, hadoop.ClasspathFiles(conf, c.Separator()))
	assert.Contains(t, hadoop.CacheFiles(conf), "hdfs://namenode:8020/opt/pentaho/mapreduce/plugins#plugins")

	result, err := c.Doctor("/opt/pentaho/mapreduce", true)
	require.NoError(t, err)
	assert.True(t, result.Healthy, "%+v", result.Findings)

	records, err := c.Journal().ForInstall(report.InstallID)
	require.NoError(t, err)
	assert.NotEmpty(t, records)
}

func TestClient_FindPluginAndStage(t *testing.T) {
	cfg := setup(t)
	c, err := shims.Open(cfg)
	require.NoError(t, err)
	defer c.Close()

	ref, found, err := c.FindPlugin("steps/extra")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "steps/extra", ref.RelativePath)

	_, found, err = c.FindPlugin("steps/none")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Stage(model.StagedEntry{Source: ref.Folder, Destination: "/staged/extra"}))
	st, err := c.FileSystem().GetFileStatus(hadoop.MustPath("/staged/extra"))
	require.NoError(t, err)
	assert.Equal(t, 3, st.Replication)

	n, err := c.StagePlugins("/staged/plugins", "steps/extra", "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_Extract(t *testing.T) {
	cfg := setup(t)
	c, err := shims.Open(cfg)
	require.NoError(t, err)
	defer c.Close()

	dir, err := c.Extract(cfg.Archive, "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "lib", "kettle-core.jar"))
	assert.Equal(t, cfg.TempDir, filepath.Dir(dir))

	dest := filepath.Join(t.TempDir(), "out")
	dir, err = c.Extract(cfg.Archive, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)

	_, err = c.Extract(cfg.Archive, dest)
	assert.ErrorIs(t, err, errclass.ErrInvalidArgument)
}

func TestClient_OpenInvalidConfig(t *testing.T) {
	cfg := setup(t)
	cfg.CopyEngine = "juicefs-clone"
	_, err := shims.Open(cfg)
	assert.Error(t, err)
}

func TestClient_InstallNotifiesWebhook(t *testing.T) {
	events := make(chan webhook.Event, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev webhook.Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		events <- ev
	}))
	defer server.Close()

	cfg := setup(t)
	cfg.Webhooks.Hooks = []webhook.HookConfig{{URL: server.URL, Events: []webhook.EventType{webhook.EventAll}}}
	c, err := shims.Open(cfg)
	require.NoError(t, err)
	defer c.Close()

	report, err := c.Install(shims.InstallOptions{})
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, webhook.EventInstallComplete, ev.Event)
	assert.Equal(t, report.InstallID, ev.InstallID)

	_, err = c.Install(shims.InstallOptions{AdditionalPlugins: "steps/missing"})
	require.Error(t, err)
	ev = <-events
	assert.Equal(t, webhook.EventInstallFailed, ev.Event)
	assert.NotEmpty(t, ev.Error)
}
