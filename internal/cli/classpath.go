package cli

import (
	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func newClasspathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classpath <install-dir>",
		Short: "Print the job configuration that ships an installed environment",
		Long: `Print the job configuration that ships an installed environment.

Every entry of lib/ is added to mapred.job.classpath.files and the cache;
every other top-level entry is added to the cache under its own name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			conf, err := c.Classpath(args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(map[string]any{
					"classpath":      hadoop.ClasspathFiles(conf, c.Separator()),
					"cache_files":    hadoop.CacheFiles(conf),
					"create_symlink": hadoop.SymlinkEnabled(conf),
				})
			}
			for _, key := range []string{model.KeyClasspathFiles, model.KeyCacheFiles, model.KeyCreateSymlink} {
				if v, ok := conf.Lookup(key); ok {
					a.printf("%s=%s\n", key, v)
				}
			}
			return nil
		},
	}
}
