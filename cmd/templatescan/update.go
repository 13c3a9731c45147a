package templatescan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/update"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Update templatescan to the latest GitHub release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			latest, err := update.SelfUpdate(version)
			if err != nil {
				return err
			}
			if latest == update.Normalize(version) {
				fmt.Fprintf(cmd.OutOrStdout(), "templatescan v%s is already the latest release\n", latest)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated to v%s\n", latest)
			return nil
		},
	})
}
