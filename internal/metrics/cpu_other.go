//go:build !linux

package metrics

func readCPUStats(procRoot string) (CPUStats, error) {
	return CPUStats{}, ErrUnsupported
}

func (h *Host) coreFrequencies() (map[int]CPUClock, error) {
	return nil, ErrUnsupported
}
