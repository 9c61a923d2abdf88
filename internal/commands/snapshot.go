package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pimonitor/internal/ui"
)

// NewSnapshotCmd creates the snapshot command
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print a telemetry snapshot of this host as JSON",
		Long: `Collect a snapshot locally, without a running server, and print it in
the same JSON shape /livesync and /deadsync return.

Examples:
  pimonitor snapshot live    # memory, cpu, io, processes, sensors
  pimonitor snapshot dead    # os, partitions, addresses, boot time`,
	}

	cmd.AddCommand(newSnapshotKindCmd("live", "Print the live snapshot"))
	cmd.AddCommand(newSnapshotKindCmd("dead", "Print the static snapshot"))
	return cmd
}

func newSnapshotKindCmd(kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			composer := newComposer(cfg)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var doc interface{}
			err = ui.WithSpinner(fmt.Sprintf("Collecting %s snapshot", kind), func() (string, error) {
				if kind == "live" {
					doc = composer.Live(ctx)
				} else {
					doc = composer.Dead(ctx)
				}
				return fmt.Sprintf("Collected %s snapshot", kind), nil
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
}
