package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	constants "pimonitor/config"
	"pimonitor/internal/ui"
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:                constants.APP_NAME,
		Short:              "Host telemetry and process control for small machines",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.RenderBanner())
			fmt.Fprintln(out, ui.RenderSubtitle(constants.APP_DESCRIPTION))
			fmt.Fprintln(out)

			ui.PrintSection(out, "Quick Start")
			fmt.Fprint(out, ui.CreateList([]ui.KeyValue{
				{Key: "Serve", Value: "pimonitor serve"},
				{Key: "Fixed passcode", Value: "pimonitor serve -c $(pimonitor passcode)"},
				{Key: "Local snapshot", Value: "pimonitor snapshot live"},
				{Key: "Process details", Value: "pimonitor proc info <pid>"},
				{Key: "Run at boot", Value: "pimonitor service install"},
			}))
			ui.PrintSectionEnd(out)

			ui.PrintStatus(out, "info", "Use 'pimonitor [command] --help' for detailed help")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $HOME/.pimonitor/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (INFO or DEBUG)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewSnapshotCmd())
	rootCmd.AddCommand(NewProcCmd())
	rootCmd.AddCommand(NewPasscodeCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewServiceCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
