package metrics

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// processFields is the part of *process.Process a summary reads
type processFields interface {
	NameWithContext(ctx context.Context) (string, error)
	UsernameWithContext(ctx context.Context) (string, error)
	MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error)
	CPUPercentWithContext(ctx context.Context) (float64, error)
	IsRunningWithContext(ctx context.Context) (bool, error)
}

type listedProcess struct {
	pid  int32
	proc processFields
}

// listProcesses enumerates the process table; tests replace it
var listProcesses = func(ctx context.Context) ([]listedProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]listedProcess, len(procs))
	for i, p := range procs {
		out[i] = listedProcess{pid: p.Pid, proc: p}
	}
	return out, nil
}

// Processes lists every process keyed by pid. Processes that exit while being
// read are omitted; fields the caller may not read are left zero.
func (h *Host) Processes(ctx context.Context) (map[int32]ProcessSummary, error) {
	procs, err := listProcesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	// One meminfo read for the whole listing instead of one per process
	var totalMem uint64
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		totalMem = vm.Total
	}

	out := make(map[int32]ProcessSummary, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		summary, ok := summarize(ctx, p.pid, p.proc, totalMem)
		if !ok {
			continue
		}
		out[p.pid] = summary
	}
	return out, nil
}

func summarize(ctx context.Context, pid int32, p processFields, totalMem uint64) (ProcessSummary, bool) {
	s := ProcessSummary{PID: pid}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		// Name comes from the same status file as everything else, so
		// failing here almost always means the process is gone
		if running, _ := p.IsRunningWithContext(ctx); !running {
			return s, false
		}
	}
	s.Name = name

	if username, err := p.UsernameWithContext(ctx); err == nil {
		s.Username = username
	}
	if totalMem > 0 {
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
			s.MemoryPercent = float32(float64(mi.RSS) / float64(totalMem) * 100)
		}
	}
	if cp, err := p.CPUPercentWithContext(ctx); err == nil {
		s.CPUPercent = cp
	}

	// An exit after the name read leaves zeroed fields behind
	if running, _ := p.IsRunningWithContext(ctx); !running {
		return s, false
	}
	return s, true
}
