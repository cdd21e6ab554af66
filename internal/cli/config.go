package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Manage shimctl configuration",
		Long: `Manage shimctl configuration stored in .shimctl/config.yaml.

Environment overrides:
  SHIMCTL_TMPDIR                  - temp directory for extraction and exclusion copies
  HADOOP_CLUSTER_PATH_SEPARATOR   - separator between classpath entries`,
		DisableFlagsInUseLine: true,
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigInitCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			a.printf("%s\n%s", color.Dim("# effective shimctl configuration"), data)
			return nil
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .shimctl/config.yaml in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("cannot get current directory: %w", err)
			}
			path := config.Path(cwd)
			if a.configPath != "" {
				path = a.configPath
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.Default()
			cfg.JournalPath = config.Dir + "/journal.jsonl"
			cfg.DFS.Catalog = config.Dir + "/catalog.db"
			if err := config.SaveFile(path, cfg); err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(map[string]string{"path": path})
			}
			a.printf("%s %s\n", color.Success("Wrote"), color.Path(path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
