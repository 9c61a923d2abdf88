package commands

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	constants "pimonitor/config"
	"pimonitor/internal/encoding"
	"pimonitor/internal/process"
	"pimonitor/internal/server"
	"pimonitor/internal/ui"
)

// statusTimeout bounds the health probe
const statusTimeout = 3 * time.Second

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a server is running on a port",
		Long: `Check the lock file of the server for a port and probe its /healthz
endpoint.

Examples:
  pimonitor status          # port 4040
  pimonitor status -p 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			ui.PrintSection(out, "Server Status")
			defer ui.PrintSectionEnd(out)

			running, pid, err := process.Check(cfg.Server.Port)
			if err != nil {
				ui.PrintStatus(out, "warning", fmt.Sprintf("Lock check failed: %v", err))
			}
			if !running {
				ui.PrintStatus(out, "info", fmt.Sprintf("Not running on port %d", cfg.Server.Port))
				return nil
			}

			rows := []ui.KeyValue{
				{Key: "PID", Value: strconv.Itoa(pid)},
				{Key: "Port", Value: strconv.Itoa(cfg.Server.Port)},
			}

			health, err := probeHealth(cfg.Server.ReferenceURI())
			if err != nil {
				ui.PrintStatus(out, "warning", fmt.Sprintf("Running but not answering: %v", err))
			} else {
				ui.PrintStatus(out, "success", "Running")
				rows = append(rows, ui.KeyValue{Key: "Version", Value: health.Version})
			}
			fmt.Fprint(out, ui.CreateList(rows))
			return nil
		},
	}
	addPortFlag(cmd)
	return cmd
}

// probeHealth asks the server at baseURI for /healthz in CBOR
func probeHealth(baseURI string) (*server.HealthResponse, error) {
	req, err := http.NewRequest(http.MethodGet, baseURI+"/healthz", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", constants.CONTENT_TYPE_CBOR)

	client := &http.Client{Timeout: statusTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("healthz returned %s", resp.Status)
	}

	var health server.HealthResponse
	if err := encoding.ReadResponse(resp, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
