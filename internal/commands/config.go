package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	constants "pimonitor/config"
	"pimonitor/internal/config"
	"pimonitor/internal/ui"
)

// configFile is the --config persistent flag
var configFile string

// flagKeys maps command-line flags onto configuration keys. Only flags the
// running command defines are bound.
var flagKeys = map[string]string{
	"port":       "server.port",
	"passcode":   "server.passcode",
	"static-dir": "server.static_dir",
	"log-level":  "log.level",
}

// loadConfig layers defaults, the config file, PIMONITOR_* variables and the
// command's flags, in increasing precedence
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}
	if flagSet(cmd, "ipv4") {
		v.Set("server.ip_version", constants.IP_VERSION_4)
	}
	if flagSet(cmd, "ipv6") {
		v.Set("server.ip_version", constants.IP_VERSION_6)
	}

	return config.Load(v, configFile)
}

// flagSet reports whether a boolean flag was given as true
func flagSet(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return false
	}
	on, _ := strconv.ParseBool(f.Value.String())
	return on
}

// addPortFlag registers -p on commands that address one server instance
func addPortFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", constants.DEFAULT_PORT, "server port")
}

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration the server would start with after merging
defaults, the config file, PIMONITOR_* environment variables and flags.

The passcode is masked; an empty passcode means a fresh one is generated
at every start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			passcode := "(generated at start)"
			if cfg.Server.Passcode != "" {
				passcode = maskPasscode(cfg.Server.Passcode)
			}
			otlp := "disabled"
			if cfg.OTLP.Enabled() {
				otlp = fmt.Sprintf("%s every %ds", cfg.OTLP.Endpoint, cfg.OTLP.Interval)
			}

			ui.PrintSection(out, "Server")
			fmt.Fprint(out, ui.CreateList([]ui.KeyValue{
				{Key: "Address", Value: cfg.Server.Address()},
				{Key: "Reference URI", Value: cfg.Server.ReferenceURI()},
				{Key: "Passcode", Value: passcode},
				{Key: "Dashboard", Value: cfg.Server.StaticDir},
				{Key: "Rate limit", Value: fmt.Sprintf("%g/s burst %d", cfg.Server.RateLimit, cfg.Server.RateBurst)},
				{Key: "Metrics", Value: strconv.FormatBool(cfg.Server.MetricsEnabled)},
			}))
			ui.PrintSectionEnd(out)

			ui.PrintSection(out, "Collection")
			fmt.Fprint(out, ui.CreateList([]ui.KeyValue{
				{Key: "Category timeout", Value: cfg.Snapshot.CategoryTimeoutDuration().String()},
				{Key: "CPU sample", Value: cfg.Snapshot.CPUSampleDuration().String()},
				{Key: "OTLP", Value: otlp},
				{Key: "Log level", Value: cfg.Log.Level},
			}))
			ui.PrintSectionEnd(out)
			return nil
		},
	}
	addPortFlag(cmd)
	return cmd
}

func maskPasscode(p string) string {
	if len(p) <= 4 {
		return "****"
	}
	return p[:2] + "..." + p[len(p)-2:]
}
