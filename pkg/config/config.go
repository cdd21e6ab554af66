// Package config loads shimctl configuration from .shimctl/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/fsutil"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/webhook"
)

// Environment overrides.
const (
	EnvTempDir              = "SHIMCTL_TMPDIR"
	EnvClusterPathSeparator = "HADOOP_CLUSTER_PATH_SEPARATOR"
)

// Dir and File locate the configuration under a working root.
const (
	Dir  = ".shimctl"
	File = "config.yaml"
)

// Config is the shimctl configuration.
type Config struct {
	// TempDir holds extraction and exclusion scratch directories. Empty
	// means the system temp directory.
	TempDir              string `yaml:"temp_dir,omitempty"`
	ClusterPathSeparator string `yaml:"cluster_path_separator"`
	CopyEngine           string `yaml:"copy_engine"`
	JournalPath          string `yaml:"journal_path,omitempty"`

	DFS DFSConfig `yaml:"dfs"`
	// Cluster seeds the job configuration, e.g. mapred.submit.replication
	// or fs.defaultFS.
	Cluster map[string]string `yaml:"cluster,omitempty"`

	Archive            string   `yaml:"archive,omitempty"`
	Destination        string   `yaml:"destination,omitempty"`
	PluginRoots        []string `yaml:"plugin_roots,omitempty"`
	BigDataPlugin      string   `yaml:"big_data_plugin,omitempty"`
	AdditionalPlugins  string   `yaml:"additional_plugins,omitempty"`
	ExcludePluginFiles string   `yaml:"exclude_plugin_files,omitempty"`
	ShimIdentifier     string   `yaml:"shim_identifier,omitempty"`
	ShimDriverDir      string   `yaml:"shim_driver_dir,omitempty"`

	Logging  LoggingConfig  `yaml:"logging"`
	Webhooks webhook.Config `yaml:"webhooks"`
}

// DFSConfig locates the local directory that backs the distributed
// filesystem namespace and its attribute catalog.
type DFSConfig struct {
	Root    string `yaml:"root"`
	Catalog string `yaml:"catalog,omitempty"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ClusterPathSeparator: model.DefaultPathSeparator,
		CopyEngine:           string(model.EngineAuto),
		DFS:                  DFSConfig{Root: "dfs"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Webhooks: webhook.DefaultConfig(),
	}
}

// Path returns the configuration file location under root.
func Path(root string) string {
	return filepath.Join(root, Dir, File)
}

// Load reads root/.shimctl/config.yaml. A missing file yields defaults.
// Relative paths in the file are resolved against root.
func Load(root string) (*Config, error) {
	cfg, err := LoadFile(Path(root))
	if err != nil {
		return nil, err
	}
	cfg.resolve(root)
	return cfg, nil
}

// LoadFile reads the configuration at path. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ClusterPathSeparator == "" {
		cfg.ClusterPathSeparator = model.DefaultPathSeparator
	}
	return cfg, nil
}

// Save writes cfg to root/.shimctl/config.yaml.
func Save(root string, cfg *Config) error {
	return SaveFile(Path(root), cfg)
}

// SaveFile writes cfg to path atomically.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := fsutil.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvTempDir); v != "" {
		c.TempDir = v
	}
	if v := getenv(EnvClusterPathSeparator); v != "" {
		c.ClusterPathSeparator = v
	}
}

// ClusterConfiguration builds a job configuration seeded from Cluster.
func (c *Config) ClusterConfiguration() *hadoop.Configuration {
	return hadoop.NewConfiguration(c.Cluster)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch model.EngineType(c.CopyEngine) {
	case model.EngineAuto, model.EngineCopy, model.EngineReflinkCopy, "":
	default:
		return fmt.Errorf("unknown copy_engine %q", c.CopyEngine)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	if c.DFS.Root == "" {
		return fmt.Errorf("dfs.root must be set")
	}
	for _, h := range c.Webhooks.Hooks {
		if h.URL == "" {
			return fmt.Errorf("webhook without url")
		}
	}
	return nil
}

func (c *Config) resolve(root string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	c.TempDir = abs(c.TempDir)
	c.JournalPath = abs(c.JournalPath)
	c.DFS.Root = abs(c.DFS.Root)
	c.DFS.Catalog = abs(c.DFS.Catalog)
	c.Archive = abs(c.Archive)
	c.BigDataPlugin = abs(c.BigDataPlugin)
	c.ShimDriverDir = abs(c.ShimDriverDir)
	for i, r := range c.PluginRoots {
		c.PluginRoots[i] = abs(r)
	}
}
