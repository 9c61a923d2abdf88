package metrics

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
)

// coreSampler keeps the previous per-core times for delta-based percent
type coreSampler struct {
	mu   sync.Mutex
	last []cpu.TimesStat
}

var sampler coreSampler

// CPUTimes reads cumulative per-core times keyed by zero-based core index
func (h *Host) CPUTimes(ctx context.Context) (map[int]CPUTimes, error) {
	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu times: %w", err)
	}

	out := make(map[int]CPUTimes, len(times))
	for i, t := range times {
		out[i] = CPUTimes{
			User:      t.User,
			Nice:      t.Nice,
			System:    t.System,
			Idle:      t.Idle,
			Iowait:    t.Iowait,
			Irq:       t.Irq,
			Softirq:   t.Softirq,
			Steal:     t.Steal,
			Guest:     t.Guest,
			GuestNice: t.GuestNice,
		}
	}
	return out, nil
}

// CPUPercent reads per-core busy percent. With a sample interval it blocks for
// that long; otherwise it compares against the previous call and reports 0 on
// the first one.
func (h *Host) CPUPercent(ctx context.Context) (map[int]float64, error) {
	if h.CPUSampleInterval > 0 {
		percents, err := cpu.PercentWithContext(ctx, h.CPUSampleInterval, true)
		if err != nil {
			return nil, fmt.Errorf("failed to sample cpu percent: %w", err)
		}
		out := make(map[int]float64, len(percents))
		for i, p := range percents {
			out[i] = clampPercent(p)
		}
		return out, nil
	}

	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu times: %w", err)
	}
	return sampler.percent(times), nil
}

func (s *coreSampler) percent(times []cpu.TimesStat) map[int]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]float64, len(times))
	for i, t2 := range times {
		if i < len(s.last) {
			out[i] = calculateBusy(s.last[i], t2)
		} else {
			out[i] = 0
		}
	}
	s.last = times
	return out
}

// CPUCount returns the number of logical cpus
func (h *Host) CPUCount(ctx context.Context) (int, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to count cpus: %w", err)
	}
	return n, nil
}

// CPUClock reads per-core frequencies, falling back to the model MHz the
// platform reports when per-core scaling data is unavailable
func (h *Host) CPUClock(ctx context.Context) (map[int]CPUClock, error) {
	if clocks, err := h.coreFrequencies(); err == nil && len(clocks) > 0 {
		return clocks, nil
	}

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu info: %w", err)
	}
	if len(infos) == 0 {
		return nil, ErrUnsupported
	}

	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil || count < len(infos) {
		count = len(infos)
	}

	out := make(map[int]CPUClock, count)
	for i := 0; i < count; i++ {
		// Some platforms report one InfoStat per package rather than per core
		info := infos[0]
		if i < len(infos) {
			info = infos[i]
		}
		out[i] = CPUClock{Current: info.Mhz, Min: 0, Max: info.Mhz}
	}
	return out, nil
}

// CPUStats reads kernel event counters
func (h *Host) CPUStats(ctx context.Context) (CPUStats, error) {
	return readCPUStats(h.procPath())
}

// calculateBusy calculates the CPU busy percentage between two time points.
// Returns a percentage clamped between 0 and 100.
func calculateBusy(t1, t2 cpu.TimesStat) float64 {
	t1All, t1Busy := getAllBusy(t1)
	t2All, t2Busy := getAllBusy(t2)

	if t2All <= t1All || t2Busy <= t1Busy {
		return 0
	}

	return clampPercent((t2Busy - t1Busy) / (t2All - t1All) * 100)
}

// getAllBusy calculates total CPU time and busy CPU time from CPU times statistics.
// On Linux guest time is already counted in user/nice, so it is removed from the total.
func getAllBusy(t cpu.TimesStat) (float64, float64) {
	tot := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq +
		t.Softirq + t.Steal + t.Guest + t.GuestNice

	if runtime.GOOS == "linux" {
		tot -= t.Guest
		tot -= t.GuestNice
	}

	busy := tot - t.Idle - t.Iowait

	return tot, busy
}

// clampPercent ensures the percentage is between 0 and 100
func clampPercent(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return math.Min(100, math.Max(0, value))
}
