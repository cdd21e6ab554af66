package cli

import (
	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archive> [dest]",
		Short: "Extract a zip archive into a new local directory",
		Long: `Extract a zip archive into a new local directory.

Without dest a fresh directory is created under the configured temp
directory. dest must not exist.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) == 2 {
				dest = args[1]
			}
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			dir, err := c.Extract(args[0], dest)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(map[string]string{"archive": args[0], "directory": dir})
			}
			a.printf("%s %s into %s\n", color.Success("Extracted"), args[0], color.Path(dir))
			return nil
		},
	}
}
