package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/internal/doctor"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
)

func newDoctorCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "doctor <root>",
		Short: "Check an installation root for partial installs and drift",
		Long: `Check an installation root for partial installs and drift.

Reports a lock marker left by a failed install, a missing or empty lib/
directory, replication below mapred.submit.replication, a broken install
journal and extraction directories left in the temp directory.
Use --strict to check replication of every staged path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Doctor(args[0], strict)
			if err != nil {
				return fmt.Errorf("doctor: %w", err)
			}
			if a.jsonOutput {
				if err := a.outputJSON(result); err != nil {
					return err
				}
			} else if len(result.Findings) == 0 {
				a.printf("%s is healthy.\n", color.Path(result.Root))
			} else {
				a.printf("Findings (%d):\n", len(result.Findings))
				for _, f := range result.Findings {
					a.printf("  [%s] %s: %s %s\n", severity(f.Severity), f.Category, f.Description, color.Dim(f.Path))
				}
			}
			if !result.Healthy {
				return fmt.Errorf("%s is not healthy", result.Root)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "check replication of every staged path")
	return cmd
}

func severity(s string) string {
	if s == doctor.SeverityWarning {
		return color.Warning(s)
	}
	return color.Error(s)
}
