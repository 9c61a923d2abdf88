package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"pimonitor/internal/access"
	"pimonitor/internal/config"
	"pimonitor/internal/ui"
)

// NewPasscodeCmd creates the passcode command
func NewPasscodeCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "passcode",
		Short: "Generate a passcode",
		Long: `Print a freshly generated 16-character passcode.

With --save the passcode is written to $HOME/.pimonitor/config.yaml so every
later start uses it instead of generating a new one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			passcode, err := access.Generate()
			if err != nil {
				return err
			}

			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), passcode)
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Server.Passcode = passcode
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), passcode)
			ui.PrintStatus(cmd.ErrOrStderr(), "success", "Passcode saved; restart the server to apply it")
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the passcode in the config file")
	return cmd
}
