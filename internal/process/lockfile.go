//go:build !windows

package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	constants "pimonitor/config"
	"pimonitor/internal/logger"
)

// ErrAlreadyRunning is returned by Acquire when another server holds the lock
var ErrAlreadyRunning = errors.New("another pimonitor instance is already serving on this port")

// LockFile represents an exclusive lock on a per-port PID file
type LockFile struct {
	path string
	fd   int
}

// getPIDFilePath returns the PID file path for a server bound to port.
// Variable (not function) to allow override in tests
var getPIDFilePath = func(port int) string {
	name := fmt.Sprintf("%s-%d.pid", constants.PID_FILE_PREFIX, port)

	if runtime.GOOS == "linux" {
		// Prefer XDG Runtime Dir (cleaned on logout, per-user)
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, name)
		}

		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "run", name)
		}

		return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d-%d.pid", constants.PID_FILE_PREFIX, os.Getuid(), port))
	}

	// macOS: use Application Support
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Library", "Application Support", constants.APP_NAME, name)
	}

	return filepath.Join(os.TempDir(), name)
}

// Acquire creates and locks the PID file for port atomically.
// Returns ErrAlreadyRunning if another instance holds it.
func Acquire(port int) (*LockFile, error) {
	pidFile := getPIDFilePath(port)

	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create PID directory: %w", err)
	}

	// Open without truncating; the current holder's PID must survive a failed attempt
	fd, err := syscall.Open(pidFile, syscall.O_RDWR|syscall.O_CREAT, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open PID file: %w", err)
	}

	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		syscall.Close(fd)

		if isStale, stalePID := checkStaleLock(pidFile); isStale {
			logger.Info("Cleaning up stale PID file (process %d no longer exists)", stalePID)
			os.Remove(pidFile)
			return Acquire(port)
		}

		return nil, ErrAlreadyRunning
	}

	if err := syscall.Ftruncate(fd, 0); err != nil {
		syscall.Flock(fd, syscall.LOCK_UN)
		syscall.Close(fd)
		return nil, fmt.Errorf("failed to truncate PID file: %w", err)
	}

	pid := fmt.Sprintf("%d\n", os.Getpid())
	if _, err := syscall.Write(fd, []byte(pid)); err != nil {
		syscall.Flock(fd, syscall.LOCK_UN)
		syscall.Close(fd)
		return nil, fmt.Errorf("failed to write PID: %w", err)
	}

	logger.Debug("Acquired PID file lock: %s (PID: %d)", pidFile, os.Getpid())

	// Keep fd open to maintain lock
	return &LockFile{path: pidFile, fd: fd}, nil
}

// Release releases the lock and removes the PID file. Safe to call twice.
func (lf *LockFile) Release() error {
	if lf == nil || lf.fd <= 0 {
		return nil
	}

	logger.Debug("Releasing PID file lock: %s", lf.path)

	syscall.Flock(lf.fd, syscall.LOCK_UN)
	syscall.Close(lf.fd)
	os.Remove(lf.path)

	lf.fd = 0
	return nil
}

// Check reports whether a server holds the lock for port, and its PID
func Check(port int) (bool, int, error) {
	fd, err := syscall.Open(getPIDFilePath(port), syscall.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("failed to open PID file: %w", err)
	}
	defer syscall.Close(fd)

	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		// Failed to lock = another instance is running
		return true, readPIDFromFd(fd), nil
	}

	syscall.Flock(fd, syscall.LOCK_UN)
	return false, 0, nil
}

// checkStaleLock checks if PID file is stale (no process holds the lock)
func checkStaleLock(pidFile string) (bool, int) {
	fd, err := syscall.Open(pidFile, syscall.O_RDONLY, 0)
	if err != nil {
		return false, 0
	}
	defer syscall.Close(fd)

	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return false, 0
	}
	syscall.Flock(fd, syscall.LOCK_UN)

	return true, readPIDFromFd(fd)
}

func readPIDFromFd(fd int) int {
	buf := make([]byte, 32)
	n, err := syscall.Read(fd, buf)
	if err != nil || n == 0 {
		return 0
	}

	var pid int
	fmt.Sscanf(string(buf[:n]), "%d", &pid)
	return pid
}

// IsServeProcess verifies that pid is a pimonitor server, guarding against
// PID reuse
func IsServeProcess(pid int) bool {
	if pid <= 0 {
		return false
	}

	var cmdline string
	if runtime.GOOS == "linux" {
		data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
		if err != nil {
			return false
		}
		cmdline = strings.ReplaceAll(string(data), "\x00", " ")
	} else {
		output, err := exec.Command("ps", "-p", fmt.Sprintf("%d", pid), "-o", "command=").Output()
		if err != nil {
			return false
		}
		cmdline = string(output)
	}

	cmdline = strings.ToLower(cmdline)
	return strings.Contains(cmdline, constants.APP_NAME) && strings.Contains(cmdline, "serve")
}

// CleanupStale removes the PID file for port unless a live server owns it
func CleanupStale(port int) error {
	pidFile := getPIDFilePath(port)

	running, pid, err := Check(port)
	if err != nil {
		return err
	}

	if !running {
		os.Remove(pidFile)
		return nil
	}

	if !IsServeProcess(pid) {
		logger.Info("PID file holds non-pimonitor process %d, cleaning up", pid)
		os.Remove(pidFile)
		return nil
	}

	return fmt.Errorf("pimonitor is serving on port %d (PID %d)", port, pid)
}
