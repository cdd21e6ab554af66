package cli

import (
	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
)

func newFindPluginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find-plugin <name>",
		Short: "Locate a plugin folder under the configured plugin roots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			ref, found, err := c.FindPlugin(args[0])
			if err != nil {
				return err
			}
			if !found {
				return withPluginHint(errclass.ErrPluginNotFound.WithMessage(notFoundPrefix+args[0]), c.Config().PluginRoots)
			}
			if a.jsonOutput {
				return a.outputJSON(ref)
			}
			a.printf("%s\t%s\n", ref.RelativePath, color.Path(ref.Folder))
			return nil
		},
	}
}
