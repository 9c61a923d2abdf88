package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	constants "pimonitor/config"
	"pimonitor/internal/access"
	"pimonitor/internal/config"
	"pimonitor/internal/logger"
	"pimonitor/internal/metrics"
	"pimonitor/internal/process"
	"pimonitor/internal/server"
	"pimonitor/internal/service"
	"pimonitor/internal/snapshot"
	"pimonitor/internal/ui"
)

// healthInterval paces the health log line and the systemd watchdog ping
const healthInterval = 5 * time.Minute

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve telemetry and process control over HTTP",
		Long: `Serve live and static host telemetry, per-process details and process
control over HTTP, plus the dashboard build from --static-dir.

Every data endpoint requires the passcode printed at startup. Without -c a
fresh 16-character passcode is generated each time the server starts.

Examples:
  pimonitor serve                  # all interfaces, port 4040
  pimonitor serve -4 -p 8080       # IPv4 only
  pimonitor serve -c MYPASSCODE    # fixed passcode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	addPortFlag(cmd)
	cmd.Flags().BoolP("ipv4", "4", false, "bind IPv4 only (0.0.0.0)")
	cmd.Flags().BoolP("ipv6", "6", false, "bind IPv6 only (::)")
	cmd.MarkFlagsMutuallyExclusive("ipv4", "ipv6")
	cmd.Flags().StringP("passcode", "c", "", "use this passcode instead of generating one")
	cmd.Flags().String("static-dir", constants.DEFAULT_STATIC_DIR, "dashboard build to serve at /")
	return cmd
}

// serverConfig maps the loaded configuration onto the HTTP server settings
func serverConfig(cfg *config.Config) *server.Config {
	return &server.Config{
		Address:         cfg.Server.Address(),
		StaticDir:       cfg.Server.StaticDir,
		RateLimit:       rate.Limit(cfg.Server.RateLimit),
		RateBurst:       cfg.Server.RateBurst,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
		MetricsEnabled:  cfg.Server.MetricsEnabled,
	}
}

func newComposer(cfg *config.Config) *snapshot.Composer {
	host := metrics.NewHost(cfg.Snapshot.CPUSampleDuration())
	return snapshot.NewComposer(host, cfg.Snapshot.CategoryTimeoutDuration())
}

func runServe(ctx context.Context, out io.Writer, cfg *config.Config) (err error) {
	logger.Configure(cfg.Log.File, cfg.Log.Level, os.Stderr)

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			logger.Error("Panic in serve: %v\n%s", r, buf[:n])
			service.NotifyStopping()
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	lock, err := process.Acquire(cfg.Server.Port)
	if err != nil {
		if errors.Is(err, process.ErrAlreadyRunning) {
			return fmt.Errorf("port %d: %w", cfg.Server.Port, err)
		}
		return err
	}
	defer lock.Release()

	gate, err := access.NewGate(cfg.Server.Passcode)
	if err != nil {
		return err
	}

	composer := newComposer(cfg)
	srv := server.New(serverConfig(cfg), gate, composer)

	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	ui.PrintStartupBanner(out, ui.StartupInfo{
		IPVersion:    cfg.Server.IPVersion,
		Passcode:     gate.Passcode(),
		ReferenceURI: cfg.Server.ReferenceURI(),
		StaticDir:    cfg.Server.StaticDir,
		Metrics:      cfg.Server.MetricsEnabled,
	})

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== SERVER STARTING - PID: %d ===", os.Getpid())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	if cfg.OTLP.Enabled() {
		g.Go(func() error {
			runExporter(gctx, cfg, composer)
			return nil
		})
	}
	g.Go(func() error {
		runHealth(gctx)
		return nil
	})

	service.NotifyReady()
	service.NotifyStatus(fmt.Sprintf("Serving on %s", ln.Addr()))

	err = g.Wait()
	service.NotifyStopping()
	logger.Info("=== SERVER EXITING - PID: %d ===", os.Getpid())
	return err
}

// runExporter pushes live host gauges to the OTLP collector until ctx ends.
// A collector that cannot be set up is logged and the server keeps running.
func runExporter(ctx context.Context, cfg *config.Config, composer *snapshot.Composer) {
	interval := time.Duration(cfg.OTLP.Interval) * time.Second
	if interval <= 0 {
		interval = constants.DEFAULT_OTLP_INTERVAL_SECONDS * time.Second
	}

	hostname, _ := os.Hostname()
	err := metrics.StartOTelExporter(&metrics.OTelConfig{
		Endpoint: cfg.OTLP.Endpoint,
		Insecure: cfg.OTLP.Insecure,
		Interval: interval,
		Hostname: hostname,
		Version:  GetCurrentVersion(),
	})
	if err != nil {
		logger.Error("Failed to start OTLP export: %v", err)
		return
	}
	defer func() {
		logger.Info("Stopping OTLP export...")
		if err := metrics.StopOTelExporter(); err != nil {
			logger.Warning("Failed to stop OTLP export: %v", err)
		}
	}()
	logger.Info("OTLP export to %s every %s", cfg.OTLP.Endpoint, interval)

	// Collect once up front so the first export has data
	composer.Live(ctx)
	if err := metrics.ForceFlush(); err != nil {
		logger.Warning("Initial OTLP flush failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			composer.Live(ctx)
		}
	}
}

// runHealth logs runtime health and pings the systemd watchdog until ctx ends
func runHealth(ctx context.Context) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			logger.Debug("Health check - goroutines: %d, memory: %.1f MB",
				runtime.NumGoroutine(),
				float64(memStats.Alloc)/1024/1024)
			service.NotifyWatchdog()
		}
	}
}
