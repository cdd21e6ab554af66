package cli

import (
	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/progress"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/shims"
)

func newInstallCmd(a *app) *cobra.Command {
	var opts shims.InstallOptions
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "install [destination]",
		Short: "Install a Kettle environment onto the distributed filesystem",
		Long: `Install a Kettle environment onto the distributed filesystem.

Extracts the runtime archive, writes a lock marker under the destination,
stages the archive contents, shim drivers, the big data plugin and any
additional plugins, then removes the lock marker. A failed install leaves
the lock marker in place; rerun install to overwrite it.

Values not given as flags are taken from the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Destination = args[0]
			}
			var clientOpts []shims.Option
			var term *progress.Terminal
			if showProgress && !a.jsonOutput {
				term = progress.NewTerminal(a.stderr, true)
				clientOpts = append(clientOpts, shims.WithProgress(term.Callback()))
			}
			c, err := a.openClient(clientOpts...)
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Install(opts)
			if term != nil {
				term.Done()
			}
			if a.jsonOutput {
				if jerr := a.outputJSON(report); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				if report != nil {
					a.printf("Install stopped in state %s; lock marker left under %s\n",
						color.State(string(report.State)), color.Path(report.Destination))
				}
				return err
			}
			a.printf("%s %s (%d entries staged)\n", color.Success("Installed"), color.Path(report.Destination), report.StagedEntries)
			for _, skipped := range report.DriverSkips {
				a.printf("  %s driver not staged: %s\n", color.Warning("warning:"), skipped)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Archive, "archive", "", "runtime archive (zip)")
	f.StringVar(&opts.BigDataPlugin, "big-data-plugin", "", "local big data plugin folder")
	f.StringVar(&opts.AdditionalPlugins, "plugins", "", "comma-separated additional plugin folders")
	f.StringVar(&opts.ExcludePluginFiles, "exclude", "", "comma-separated library name prefixes to leave out of additional plugins")
	f.StringVar(&opts.ShimIdentifier, "shim", "", "shim identifier whose pmr libraries go into lib/")
	f.BoolVar(&showProgress, "progress", false, "show a progress bar")
	return cmd
}
