// Package service installs the server as a systemd unit or launchd agent
// and reports readiness to systemd.
package service

import (
	"fmt"
	"os"
	"runtime"

	"github.com/okzk/sdnotify"
	"github.com/takama/daemon"

	constants "pimonitor/config"
	"pimonitor/internal/logger"
)

const serviceDescription = "PiMonitor telemetry and process-control driver"

// ServeCommand is the subcommand the installed unit runs
const ServeCommand = "serve"

// newDaemon is swapped in tests
var newDaemon = daemon.New

// Service wraps takama/daemon for cross-platform service management
type Service struct {
	daemon daemon.Daemon
}

// New creates a system daemon when running as root and a user agent otherwise
func New() (*Service, error) {
	kind := daemon.UserAgent
	if os.Geteuid() == 0 {
		kind = daemon.SystemDaemon
	}

	d, err := newDaemon(constants.APP_NAME, serviceDescription, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon: %w", err)
	}

	return &Service{daemon: d}, nil
}

// Install writes the unit. serveArgs are appended after the serve
// subcommand, e.g. "-p", "8080".
func (s *Service) Install(serveArgs ...string) (string, error) {
	args := append([]string{ServeCommand}, serveArgs...)
	status, err := s.daemon.Install(args...)
	if err != nil {
		return status, err
	}

	logger.Info("Service installed: %s", status)
	return status, nil
}

// Remove removes the service
func (s *Service) Remove() (string, error) {
	status, err := s.daemon.Remove()
	if err != nil {
		return status, err
	}

	logger.Info("Service removed: %s", status)
	return status, nil
}

// Start starts the service
func (s *Service) Start() (string, error) {
	status, err := s.daemon.Start()
	if err != nil {
		return status, err
	}

	logger.Info("Service started: %s", status)
	return status, nil
}

// Stop stops the service
func (s *Service) Stop() (string, error) {
	status, err := s.daemon.Stop()
	if err != nil {
		return status, err
	}

	logger.Info("Service stopped: %s", status)
	return status, nil
}

// Restart stops the service, ignoring a failure to stop, and starts it again
func (s *Service) Restart() (string, error) {
	if _, err := s.daemon.Stop(); err != nil {
		logger.Debug("Stop before restart: %v", err)
	}
	return s.Start()
}

// Status returns the service status
func (s *Service) Status() (string, error) {
	return s.daemon.Status()
}

// NotifyReady notifies systemd that service is ready (Type=notify)
func NotifyReady() {
	if runtime.GOOS == "linux" {
		sdnotify.Ready()
		logger.Debug("Sent READY notification to systemd")
	}
}

// NotifyStopping notifies systemd that service is stopping
func NotifyStopping() {
	if runtime.GOOS == "linux" {
		sdnotify.Stopping()
		logger.Debug("Sent STOPPING notification to systemd")
	}
}

// NotifyWatchdog sends watchdog ping to systemd
func NotifyWatchdog() {
	if runtime.GOOS == "linux" {
		sdnotify.Watchdog()
	}
}

// NotifyStatus sends status message to systemd
func NotifyStatus(status string) {
	if runtime.GOOS == "linux" {
		sdnotify.Status(status)
	}
}
