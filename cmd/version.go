package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/meta"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stevedore version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stevedore %s (commit %s, built %s, %s)\n",
				meta.Version, meta.Commit, meta.Date, runtime.Version())

			return err
		},
	}
}
