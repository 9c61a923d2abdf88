package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	constants "pimonitor/config"
	"pimonitor/internal/ui"
)

// GetCurrentVersion reports the running version. main replaces it when the
// build stamps a version through ldflags.
var GetCurrentVersion = func() string {
	return constants.APP_VERSION
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "v%s\n", GetCurrentVersion())
			if verbose {
				fmt.Fprint(out, ui.CreateList(ui.LibraryVersions()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list library versions")
	return cmd
}
