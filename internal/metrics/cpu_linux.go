//go:build linux

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/prometheus/procfs"
)

var cpuDirPattern = regexp.MustCompile(`^cpu(\d+)$`)

// readCPUStats parses /proc/stat. The kernel exposes no syscall counter, so Syscalls stays 0.
func readCPUStats(procRoot string) (CPUStats, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return CPUStats{}, fmt.Errorf("failed to open procfs: %w", err)
	}

	stat, err := fs.Stat()
	if err != nil {
		return CPUStats{}, fmt.Errorf("failed to read kernel stat: %w", err)
	}

	return CPUStats{
		CtxSwitches:    stat.ContextSwitches,
		Interrupts:     stat.IRQTotal,
		SoftInterrupts: stat.SoftIRQTotal,
		Syscalls:       0,
	}, nil
}

// coreFrequencies reads cpufreq scaling data for every core, in MHz
func (h *Host) coreFrequencies() (map[int]CPUClock, error) {
	entries, err := os.ReadDir(h.sysPath("devices", "system", "cpu"))
	if err != nil {
		return nil, err
	}

	out := make(map[int]CPUClock)
	for _, entry := range entries {
		m := cpuDirPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, _ := strconv.Atoi(m[1])

		freqDir := h.sysPath("devices", "system", "cpu", entry.Name(), "cpufreq")
		current, err := readKHz(filepath.Join(freqDir, "scaling_cur_freq"))
		if err != nil {
			continue
		}
		minFreq, _ := readKHz(filepath.Join(freqDir, "cpuinfo_min_freq"))
		maxFreq, _ := readKHz(filepath.Join(freqDir, "cpuinfo_max_freq"))

		out[index] = CPUClock{Current: current, Min: minFreq, Max: maxFreq}
	}

	if len(out) == 0 {
		return nil, ErrUnsupported
	}
	return out, nil
}

// readKHz reads a sysfs kHz value and returns MHz
func readKHz(path string) (float64, error) {
	v, err := readSysInt(path)
	if err != nil {
		return 0, err
	}
	return float64(v) / 1000, nil
}
