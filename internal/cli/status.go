package cli

import (
	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <root>",
		Short: "Show whether an environment is installed at root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			status, err := c.Status(args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(status)
			}
			if status.Installed {
				a.printf("%s: %s\n", color.Path(status.Root), color.Success("installed"))
				return nil
			}
			a.printf("%s: %s (lock marker present)\n", color.Path(status.Root), color.Warning("not installed"))
			return nil
		},
	}
}
