package shims

import (
	"context"
	"fmt"
	"os"

	"github.com/tahopen/tahopen-hadoop-shims/internal/archive"
	"github.com/tahopen/tahopen-hadoop-shims/internal/audit"
	"github.com/tahopen/tahopen-hadoop-shims/internal/classpath"
	"github.com/tahopen/tahopen-hadoop-shims/internal/doctor"
	"github.com/tahopen/tahopen-hadoop-shims/internal/engine"
	"github.com/tahopen/tahopen-hadoop-shims/internal/installer"
	"github.com/tahopen/tahopen-hadoop-shims/internal/plugin"
	"github.com/tahopen/tahopen-hadoop-shims/internal/stager"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/config"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/logging"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/progress"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/webhook"
)

// Client provides high-level staging operations.
type Client struct {
	cfg       *config.Config
	fs        *dfs.LocalFileSystem
	engine    engine.Engine
	stager    *stager.Stager
	resolver  *plugin.Resolver
	extractor *archive.Extractor
	registrar *classpath.Registrar
	journal   *audit.FileAppender
	notifier  *webhook.Notifier
	log       *logging.Logger
	progress  progress.Callback
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by every component.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithProgress receives install step transitions.
func WithProgress(cb progress.Callback) Option {
	return func(c *Client) { c.progress = cb }
}

// Open builds a Client from cfg. The caller must Close it.
func Open(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c := &Client{
		cfg:      cfg,
		log:      logging.Global(),
		progress: progress.Noop,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := os.MkdirAll(cfg.DFS.Root, 0755); err != nil {
		return nil, fmt.Errorf("create dfs root: %w", err)
	}
	c.engine = engine.Resolve(model.EngineType(cfg.CopyEngine), cfg.DFS.Root)
	fs, err := dfs.NewLocalFileSystem(cfg.DFS.Root, cfg.DFS.Catalog, cfg.ClusterConfiguration(), dfs.WithEngine(c.engine))
	if err != nil {
		return nil, fmt.Errorf("open filesystem: %w", err)
	}
	c.fs = fs
	c.stager = stager.New(fs,
		stager.WithEngine(c.engine),
		stager.WithTempDir(cfg.TempDir),
		stager.WithLogger(c.log),
	)
	c.resolver = plugin.NewResolver(plugin.StaticRoots(cfg.PluginRoots))
	c.extractor = archive.NewExtractor(cfg.TempDir)
	c.registrar = classpath.NewRegistrar(fs, cfg.ClusterPathSeparator)
	if cfg.JournalPath != "" {
		c.journal = audit.NewFileAppender(cfg.JournalPath)
	}
	c.notifier = webhook.NewNotifier(cfg.Webhooks, c.log)
	c.log.Debug("client opened", map[string]any{
		"dfs_root": cfg.DFS.Root,
		"engine":   string(c.engine.Name()),
	})
	return c, nil
}

// Close releases the filesystem catalog.
func (c *Client) Close() error {
	return c.fs.Close()
}

// FileSystem returns the filesystem staged entries are written to.
func (c *Client) FileSystem() dfs.FileSystem { return c.fs }

// Config returns the configuration the client was opened with.
func (c *Client) Config() *config.Config { return c.cfg }

// Journal returns the install journal, or nil when none is configured.
func (c *Client) Journal() *audit.FileAppender { return c.journal }

// InstallOptions overrides configured install inputs. Empty fields fall
// back to the configuration.
type InstallOptions struct {
	Archive            string
	Destination        string
	BigDataPlugin      string
	AdditionalPlugins  string
	ExcludePluginFiles string
	ShimIdentifier     string
}

func pick(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Install installs the environment described by opts and the config.
func (c *Client) Install(opts InstallOptions) (*model.InstallReport, error) {
	req := installer.Request{
		Archive:            pick(opts.Archive, c.cfg.Archive),
		BigDataPlugin:      pick(opts.BigDataPlugin, c.cfg.BigDataPlugin),
		AdditionalPlugins:  pick(opts.AdditionalPlugins, c.cfg.AdditionalPlugins),
		ExcludePluginFiles: pick(opts.ExcludePluginFiles, c.cfg.ExcludePluginFiles),
		ShimIdentifier:     pick(opts.ShimIdentifier, c.cfg.ShimIdentifier),
	}
	if dest := pick(opts.Destination, c.cfg.Destination); dest != "" {
		p, err := hadoop.ParsePath(dest)
		if err != nil {
			return nil, fmt.Errorf("destination: %w", err)
		}
		req.Destination = p
	}
	report, err := c.newInstaller().Install(req)
	// Delivery problems are logged by the notifier and never fail the install.
	_ = c.notifier.NotifyInstall(context.Background(), report)
	return report, err
}

// StagePlugins stages comma-separated plugin folders into pluginsDir.
func (c *Client) StagePlugins(pluginsDir, names, excludePrefixes string) (int, error) {
	p, err := hadoop.ParsePath(pluginsDir)
	if err != nil {
		return 0, fmt.Errorf("plugins dir: %w", err)
	}
	return c.newInstaller().StagePluginsForCache(p, names, excludePrefixes)
}

func (c *Client) newInstaller() *installer.Installer {
	opts := []installer.Option{
		installer.WithExtractor(c.extractor),
		installer.WithDriverDir(c.cfg.ShimDriverDir),
		installer.WithProgress(c.progress),
		installer.WithLogger(c.log),
	}
	if c.journal != nil {
		opts = append(opts, installer.WithJournal(c.journal))
	}
	return installer.New(c.stager, c.resolver, opts...)
}

// Status reports whether root holds a completed install.
func (c *Client) Status(root string) (*model.InstallStatus, error) {
	p, err := hadoop.ParsePath(root)
	if err != nil {
		return nil, err
	}
	return installer.Status(c.fs, p)
}

// Stage copies one local entry onto the filesystem.
func (c *Client) Stage(entry model.StagedEntry) error {
	return c.stager.Stage(entry)
}

// Extract unpacks archive into dest, or into a fresh temp directory when
// dest is empty, and returns the directory used.
func (c *Client) Extract(archivePath, dest string) (string, error) {
	if dest == "" {
		return c.extractor.ExtractToTemp(archivePath)
	}
	if err := c.extractor.Extract(archivePath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// FindPlugin resolves a plugin folder name against the plugin roots.
func (c *Client) FindPlugin(name string) (plugin.Ref, bool, error) {
	return c.resolver.FindPluginFolder(name)
}

// Classpath returns a job configuration that ships the environment
// installed at installDir.
func (c *Client) Classpath(installDir string) (*hadoop.Configuration, error) {
	p, err := hadoop.ParsePath(installDir)
	if err != nil {
		return nil, err
	}
	conf := c.cfg.ClusterConfiguration()
	if err := c.registrar.ConfigureWithKettleEnvironment(conf, p); err != nil {
		return nil, err
	}
	return conf, nil
}

// Separator returns the cluster path separator classpath entries use.
func (c *Client) Separator() string { return c.registrar.Separator() }

// Doctor checks the installation root.
func (c *Client) Doctor(root string, strict bool) (*doctor.Result, error) {
	p, err := hadoop.ParsePath(root)
	if err != nil {
		return nil, err
	}
	opts := []doctor.Option{doctor.WithTempDir(c.cfg.TempDir)}
	if c.journal != nil {
		opts = append(opts, doctor.WithJournal(c.journal))
	}
	return doctor.NewDoctor(c.fs, opts...).Check(p, strict)
}
