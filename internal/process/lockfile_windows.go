//go:build windows

package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"

	constants "pimonitor/config"
	"pimonitor/internal/logger"
)

// ErrAlreadyRunning is returned by Acquire when another server holds the lock
var ErrAlreadyRunning = errors.New("another pimonitor instance is already serving on this port")

// stillActive is the exit code Windows reports for a live process
const stillActive = 259

// LockFile is a PID file created exclusively; Windows has no flock, so
// liveness of the recorded PID decides staleness
type LockFile struct {
	path string
	held bool
}

var getPIDFilePath = func(port int) string {
	dir := os.Getenv("LOCALAPPDATA")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, constants.APP_NAME, fmt.Sprintf("%s-%d.pid", constants.PID_FILE_PREFIX, port))
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isAlive checks the process with OpenProcess rather than a signal
func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	return exitCode == stillActive
}

// Acquire creates the PID file for port exclusively
func Acquire(port int) (*LockFile, error) {
	pidFile := getPIDFilePath(port)
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create PID directory: %w", err)
	}

	f, err := os.OpenFile(pidFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to open PID file: %w", err)
		}
		pid, _ := readPID(pidFile)
		if isAlive(pid) {
			return nil, ErrAlreadyRunning
		}
		logger.Info("Cleaning up stale PID file (process %d no longer exists)", pid)
		os.Remove(pidFile)
		return Acquire(port)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		os.Remove(pidFile)
		return nil, fmt.Errorf("failed to write PID: %w", err)
	}
	return &LockFile{path: pidFile, held: true}, nil
}

// Release removes the PID file. Safe to call twice.
func (lf *LockFile) Release() error {
	if lf == nil || !lf.held {
		return nil
	}
	os.Remove(lf.path)
	lf.held = false
	return nil
}

// Check reports whether a server holds the lock for port, and its PID
func Check(port int) (bool, int, error) {
	pid, err := readPID(getPIDFilePath(port))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	if !isAlive(pid) {
		return false, 0, nil
	}
	return true, pid, nil
}

// IsServeProcess reports whether pid is alive; Windows offers no cheap
// command-line lookup, so the PID file is trusted
func IsServeProcess(pid int) bool {
	return isAlive(pid)
}

// CleanupStale removes the PID file for port unless a live server owns it
func CleanupStale(port int) error {
	running, pid, err := Check(port)
	if err != nil {
		return err
	}
	if running {
		return fmt.Errorf("pimonitor is serving on port %d (PID %d)", port, pid)
	}
	os.Remove(getPIDFilePath(port))
	return nil
}
