// Package metrics adapts host operating-system facilities into normalized,
// JSON-ready metric categories.
package metrics

import (
	"context"
	"path/filepath"
	"time"
)

// Source is one query per metric category. Every method is safe for
// concurrent use and honors ctx where the underlying facility allows it.
type Source interface {
	VirtualMemory(ctx context.Context) (VirtualMemory, error)
	Swap(ctx context.Context) (Swap, error)
	CPUStats(ctx context.Context) (CPUStats, error)
	CPUTimes(ctx context.Context) (map[int]CPUTimes, error)
	CPUPercent(ctx context.Context) (map[int]float64, error)
	CPUClock(ctx context.Context) (map[int]CPUClock, error)
	CPUCount(ctx context.Context) (int, error)
	DiskIO(ctx context.Context) (map[string]DiskIO, error)
	Partitions(ctx context.Context) ([]Partition, error)
	NetIO(ctx context.Context) (map[string]NetIO, error)
	NetAddrs(ctx context.Context) (map[string]map[string]NetAddr, error)
	NetStats(ctx context.Context) (map[string]NetStat, error)
	Processes(ctx context.Context) (map[int32]ProcessSummary, error)
	Temperatures(ctx context.Context) (map[string][]Temperature, error)
	Fans(ctx context.Context) (map[string][]Fan, error)
	Battery(ctx context.Context) (Battery, error)
	Uname(ctx context.Context) (Uname, error)
	BootTime(ctx context.Context) (time.Time, error)
}

// Host reads the local machine through gopsutil and platform files
type Host struct {
	// CPUSampleInterval is the window cpu percent is measured over.
	// Zero compares against the previous call instead of blocking.
	CPUSampleInterval time.Duration

	// sysRoot and procRoot locate sysfs and procfs; tests point them at fixture trees
	sysRoot  string
	procRoot string
}

// NewHost returns a Host sampling cpu percent over interval
func NewHost(interval time.Duration) *Host {
	return &Host{CPUSampleInterval: interval}
}

func (h *Host) sysPath(elem ...string) string {
	root := h.sysRoot
	if root == "" {
		root = "/sys"
	}
	return filepath.Join(append([]string{root}, elem...)...)
}

func (h *Host) procPath() string {
	if h.procRoot == "" {
		return "/proc"
	}
	return h.procRoot
}

var _ Source = (*Host)(nil)
