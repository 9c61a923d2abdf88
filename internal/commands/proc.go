package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pimonitor/internal/process"
	"pimonitor/internal/ui"
)

// NewProcCmd creates the proc command
func NewProcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proc",
		Short: "Inspect or signal a local process",
		Long: `Inspect or signal a process on this host, the same way /procinfo and the
control endpoints do.

Examples:
  pimonitor proc info 1234          # fact sheet
  pimonitor proc info 1234 --json   # /procinfo body
  pimonitor proc stop 1234          # suspend
  pimonitor proc cont 1234          # resume`,
	}

	cmd.AddCommand(newProcInfoCmd())
	for _, name := range []string{"kill", "term", "stop", "cont"} {
		cmd.AddCommand(newProcControlCmd(name))
	}
	return cmd
}

// parsePIDArg parses a pid argument; ok is false for integers no process can carry
func parsePIDArg(arg string) (pid int32, ok bool, err error) {
	pid, ok, err = process.ParsePID(arg)
	if err != nil {
		return 0, false, fmt.Errorf("invalid pid %q", arg)
	}
	return pid, ok, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newProcInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info PID",
		Short: "Show everything known about a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, ok, err := parsePIDArg(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no process with pid %s", args[0])
			}

			fact, err := process.Inspect(commandContext(cmd), pid)
			if errors.Is(err, process.ErrNotFound) {
				return fmt.Errorf("no process with pid %d", pid)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(fact)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderProcessFact(fact))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the /procinfo JSON body")
	return cmd
}

var controlShort = map[string]string{
	"kill": "Kill a process (SIGKILL)",
	"term": "Ask a process to terminate (SIGTERM)",
	"stop": "Suspend a process (SIGSTOP)",
	"cont": "Resume a suspended process (SIGCONT)",
}

func newProcControlCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " PID",
		Short: controlShort[name],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := process.ParseAction(name)
			if err != nil {
				return err
			}
			pid, ok, err := parsePIDArg(args[0])
			if err != nil {
				return err
			}

			result := process.Result{Outcome: process.OutcomeNotFound}
			if ok {
				result = process.Control(commandContext(cmd), pid, action)
			}
			out := cmd.OutOrStdout()
			switch result.Outcome {
			case process.OutcomeApplied:
				ui.PrintStatus(out, "success", fmt.Sprintf("Sent %s to %d", action, pid))
			case process.OutcomeNotFound:
				ui.PrintStatus(out, "warning", fmt.Sprintf("No process with pid %s", args[0]))
			default:
				return fmt.Errorf("%s %d: %w", action, pid, result.Err)
			}
			return nil
		},
	}
}
