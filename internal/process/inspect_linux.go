//go:build linux

package process

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v4/process"
)

// userHZ is the kernel clock tick rate /proc/<pid>/stat is expressed in
const userHZ = 100

var procRoot = procfs.DefaultMountPoint

// readPlatformFields reads the kernel state letter, children cpu times and
// block io delay from /proc/<pid>/stat, and the full memory breakdown from
// /proc/<pid>/statm
func readPlatformFields(ctx context.Context, p *process.Process, f *Fact) error {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return fmt.Errorf("failed to open procfs: %w", err)
	}
	proc, err := fs.Proc(int(p.Pid))
	if err != nil {
		return err
	}
	stat, err := proc.Stat()
	if err != nil {
		return err
	}

	f.Status = stateStatus(stat.State)
	f.CPUTimes.ChildrenUser = float64(stat.CUTime) / userHZ
	f.CPUTimes.ChildrenSystem = float64(stat.CSTime) / userHZ
	f.CPUTimes.Iowait = float64(stat.DelayAcctBlkIOTicks) / userHZ

	if mem, err := p.MemoryInfoExWithContext(ctx); err == nil && mem != nil {
		f.MemoryInfo = MemoryInfo{
			RSS:    mem.RSS,
			VMS:    mem.VMS,
			Shared: mem.Shared,
			Text:   mem.Text,
			Lib:    mem.Lib,
			Data:   mem.Data,
			Dirty:  mem.Dirty,
		}
	}
	return nil
}

// stateStatus maps the state letter of /proc/<pid>/stat
func stateStatus(state string) string {
	switch state {
	case "R":
		return StatusRunning
	case "S":
		return StatusSleeping
	case "D":
		return StatusDiskSleep
	case "T", "t":
		return StatusStopped
	case "Z":
		return StatusZombie
	case "X", "x":
		return StatusDead
	case "I":
		return StatusIdle
	case "W":
		return StatusWaiting
	}
	return StatusUnknown
}
