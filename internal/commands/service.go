package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"pimonitor/internal/service"
	"pimonitor/internal/ui"
)

// NewServiceCmd creates the service command with subcommands
func NewServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the PiMonitor system service",
		Long: `Manage PiMonitor as a system service (systemd on Linux, launchd on macOS).

Run as root to install a system-wide unit; otherwise a user agent is installed.
Arguments after -- on install are passed to the serve command.

Examples:
  pimonitor service install -- -p 8080 -4
  pimonitor service start
  pimonitor service status
  pimonitor service stop
  pimonitor service remove`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install [-- SERVE-FLAGS]",
		Short: "Install pimonitor serve as a system service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, "Installing Service", func(svc *service.Service) (string, error) {
				return svc.Install(args...)
			}, "Run 'pimonitor service start' to start serving")
		},
	})
	cmd.AddCommand(newServiceActionCmd("remove", "Remove the system service", "Removing Service", (*service.Service).Remove))
	cmd.AddCommand(newServiceActionCmd("start", "Start the system service", "Starting Service", (*service.Service).Start))
	cmd.AddCommand(newServiceActionCmd("stop", "Stop the system service", "Stopping Service", (*service.Service).Stop))
	cmd.AddCommand(newServiceActionCmd("restart", "Restart the system service", "Restarting Service", (*service.Service).Restart))
	cmd.AddCommand(newServiceActionCmd("status", "Show the system service status", "Service Status", (*service.Service).Status))

	return cmd
}

func newServiceActionCmd(use, short, title string, action func(*service.Service) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, title, action, "")
		},
	}
}

// withService runs action inside a titled section and reports its status
func withService(cmd *cobra.Command, title string, action func(*service.Service) (string, error), hint string) error {
	out := cmd.OutOrStdout()
	ui.PrintSection(out, title)
	defer ui.PrintSectionEnd(out)

	svc, err := service.New()
	if err != nil {
		return err
	}

	status, err := action(svc)
	if err != nil {
		return fmt.Errorf("%s: %w", status, err)
	}

	ui.PrintStatus(out, "success", status)
	if hint != "" {
		ui.PrintStatus(out, "info", hint)
	}
	return nil
}
