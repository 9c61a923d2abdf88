//go:build !windows

package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// usePIDDir points PID files at a temp dir for the duration of the test
func usePIDDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original := getPIDFilePath
	getPIDFilePath = func(port int) string {
		return filepath.Join(dir, fmt.Sprintf("test_pimonitor-%d.pid", port))
	}
	t.Cleanup(func() { getPIDFilePath = original })
	return dir
}

func TestLockfile_SingleInstance(t *testing.T) {
	usePIDDir(t)

	lock1, err := Acquire(4040)
	if err != nil {
		t.Fatalf("First instance failed to acquire lock: %v", err)
	}
	defer lock1.Release()

	lock2, err := Acquire(4040)
	if err == nil {
		lock2.Release()
		t.Fatal("Second instance should not have acquired lock")
	}
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got: %v", err)
	}
}

func TestLockfile_PortsAreIndependent(t *testing.T) {
	usePIDDir(t)

	lockA, err := Acquire(4040)
	if err != nil {
		t.Fatalf("Failed to acquire port 4040: %v", err)
	}
	defer lockA.Release()

	lockB, err := Acquire(8080)
	if err != nil {
		t.Fatalf("A server on another port should not be blocked: %v", err)
	}
	defer lockB.Release()
}

func TestLockfile_ReleaseAndReacquire(t *testing.T) {
	dir := usePIDDir(t)

	lock1, err := Acquire(4040)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	lock1.Release()

	lock2, err := Acquire(4040)
	if err != nil {
		t.Fatalf("Failed to reacquire lock after release: %v", err)
	}
	defer lock2.Release()

	if _, err := os.Stat(filepath.Join(dir, "test_pimonitor-4040.pid")); os.IsNotExist(err) {
		t.Error("PID file should exist after reacquisition")
	}
}

func TestLockfile_Check(t *testing.T) {
	usePIDDir(t)

	running, pid, err := Check(4040)
	if err != nil {
		t.Errorf("Check should not error when no lock exists: %v", err)
	}
	if running || pid != 0 {
		t.Errorf("Expected (false, 0) with no lock, got (%v, %d)", running, pid)
	}

	lock, err := Acquire(4040)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer lock.Release()

	running, pid, err = Check(4040)
	if err != nil {
		t.Errorf("Check failed: %v", err)
	}
	if !running {
		t.Error("Check should return true when lock is held")
	}
	if pid != os.Getpid() {
		t.Errorf("Check should return current PID %d, got %d", os.Getpid(), pid)
	}
}

func TestLockfile_ConcurrentAcquisition(t *testing.T) {
	usePIDDir(t)

	var successCount, errorCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := Acquire(4040)
			if err != nil {
				errorCount.Add(1)
				return
			}
			successCount.Add(1)
			time.Sleep(100 * time.Millisecond)
			lock.Release()
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful acquisition, got %d", successCount.Load())
	}
	if errorCount.Load() != 9 {
		t.Errorf("Expected 9 failed acquisitions, got %d", errorCount.Load())
	}
}

func TestLockfile_CleanupStale(t *testing.T) {
	dir := usePIDDir(t)
	pidFile := filepath.Join(dir, "test_pimonitor-4040.pid")

	// A PID written without holding the lock
	if err := os.WriteFile(pidFile, []byte("99999\n"), 0644); err != nil {
		t.Fatalf("Failed to create stale PID file: %v", err)
	}

	if err := CleanupStale(4040); err != nil {
		t.Errorf("CleanupStale should not error on stale file: %v", err)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("Stale PID file should have been removed")
	}
}

func TestLockfile_MultipleReleases(t *testing.T) {
	usePIDDir(t)

	lock, err := Acquire(4040)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lock.Release()
	lock.Release()
	lock.Release()

	lock2, err := Acquire(4040)
	if err != nil {
		t.Fatalf("Failed to acquire lock after multiple releases: %v", err)
	}
	defer lock2.Release()
}

func TestIsServeProcess(t *testing.T) {
	if IsServeProcess(0) || IsServeProcess(-1) {
		t.Error("Non-positive PIDs are never a server")
	}
}
