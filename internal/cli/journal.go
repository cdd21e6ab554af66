package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func newJournalCmd(a *app) *cobra.Command {
	var installID string
	var verify bool

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the install journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			j := c.Journal()
			if j == nil {
				return errors.New("no journal_path configured")
			}
			if verify {
				if err := j.Verify(); err != nil {
					return err
				}
			}
			var records []model.JournalRecord
			if installID != "" {
				records, err = j.ForInstall(installID)
			} else {
				records, err = j.Records()
			}
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.outputJSON(records)
			}
			for _, r := range records {
				a.printf("%s  %-16s %-28s %s %s\n",
					color.Dim(r.Timestamp.Format("2006-01-02T15:04:05Z")),
					r.EventType, color.State(string(r.State)), color.Path(r.Destination), color.Dim(r.InstallID))
			}
			if verify {
				a.printf("%s\n", color.Success("journal hash chain verified"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&installID, "install", "", "only show records of one install")
	cmd.Flags().BoolVar(&verify, "verify", false, "verify the hash chain")
	return cmd
}
