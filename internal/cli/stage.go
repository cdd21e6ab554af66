package cli

import (
	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func newStageCmd(a *app) *cobra.Command {
	var entry model.StagedEntry

	cmd := &cobra.Command{
		Use:   "stage <source> <destination>",
		Short: "Copy a local file or folder onto the distributed filesystem",
		Long: `Copy a local file or folder onto the distributed filesystem.

The destination gets permission 0755 (0777 with --public) and the
configured mapred.submit.replication factor. A config.properties file has
its pentaho.authentication lines removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry.Source, entry.Destination = args[0], args[1]
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Stage(entry); err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(entry)
			}
			a.printf("%s %s -> %s\n", color.Success("Staged"), entry.Source, color.Path(entry.Destination))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&entry.Overwrite, "overwrite", false, "replace an existing destination")
	f.BoolVar(&entry.Public, "public", false, "make the staged entry world writable (0777)")
	f.StringVar(&entry.ExcludePrefixes, "exclude", "", "comma-separated library name prefixes to leave out of a folder")
	return cmd
}

func newStagePluginsCmd(a *app) *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "stage-plugins <plugins-dir> <names>",
		Short: "Resolve and stage comma-separated plugin folders into plugins-dir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.StagePlugins(args[0], args[1], exclude)
			if err != nil {
				return withPluginHint(err, c.Config().PluginRoots)
			}
			if a.jsonOutput {
				return a.outputJSON(map[string]any{"plugins_dir": args[0], "staged": n})
			}
			a.printf("%s %d plugin folder(s) into %s\n", color.Success("Staged"), n, color.Path(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "comma-separated library name prefixes to leave out")
	return cmd
}
