// Package process inspects and signals host processes, and guards the
// server against a second instance on the same port.
package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"pimonitor/internal/metrics"
)

// ErrNotFound means the pid does not name a live process, or the process
// exited or was replaced while it was being read
var ErrNotFound = errors.New("process not found")

// Normalized status vocabulary
const (
	StatusRunning   = "running"
	StatusSleeping  = "sleeping"
	StatusDiskSleep = "disk-sleep"
	StatusStopped   = "stopped"
	StatusZombie    = "zombie"
	StatusIdle      = "idle"
	StatusWaiting   = "waiting"
	StatusLocked    = "locked"
	StatusDead      = "dead"
	StatusUnknown   = "unknown"
)

// IDs is a real/effective/saved id triple
type IDs struct {
	Real      uint32 `json:"real"`
	Effective uint32 `json:"effective"`
	Saved     uint32 `json:"saved"`
}

type CtxSwitches struct {
	Voluntary   int64 `json:"voluntary"`
	Involuntary int64 `json:"involuntary"`
}

// CPUTimes are seconds; children times and iowait are 0 where the platform
// does not report them
type CPUTimes struct {
	User           float64 `json:"user"`
	System         float64 `json:"system"`
	ChildrenUser   float64 `json:"children_user"`
	ChildrenSystem float64 `json:"children_system"`
	Iowait         float64 `json:"iowait"`
}

// MemoryInfo is in bytes. Only RSS and VMS are filled outside Linux.
type MemoryInfo struct {
	RSS    uint64 `json:"rss"`
	VMS    uint64 `json:"vms"`
	Shared uint64 `json:"shared"`
	Text   uint64 `json:"text"`
	Lib    uint64 `json:"lib"`
	Data   uint64 `json:"data"`
	Dirty  uint64 `json:"dirty"`
}

// Fact is a coherent detail record for one process
type Fact struct {
	PID            int32       `json:"pid"`
	Username       string      `json:"username"`
	UIDs           IDs         `json:"uids"`
	MemoryPercent  float32     `json:"memory_percent"`
	Name           string      `json:"name"`
	CreateTime     string      `json:"create_time"`
	NumCtxSwitches CtxSwitches `json:"num_ctx_switches"`
	CPUPercent     float64     `json:"cpu_percent"`
	CPUTimes       CPUTimes    `json:"cpu_times"`
	MemoryInfo     MemoryInfo  `json:"memory_info"`
	Status         string      `json:"status"`
	NumThreads     int32       `json:"num_threads"`
	GIDs           IDs         `json:"gids"`
	Terminal       *string     `json:"terminal"`

	created int64 // ms since epoch, for the coherence check
}

// Inspect reads every field of pid. The creation time is read before and
// after the field reads; a change means the pid was recycled mid-read and
// is reported as ErrNotFound.
func Inspect(ctx context.Context, pid int32) (*Fact, error) {
	if pid <= 0 {
		return nil, ErrNotFound
	}

	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	created, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return nil, gone(ctx, p, err)
	}

	f := &Fact{PID: pid, created: created}
	if err := readFields(ctx, p, f); err != nil {
		return nil, gone(ctx, p, err)
	}

	after, err := p.CreateTimeWithContext(ctx)
	if err != nil || after != created {
		return nil, ErrNotFound
	}
	return f, nil
}

// gone maps a read error to ErrNotFound when the process no longer exists
func gone(ctx context.Context, p *process.Process, err error) error {
	if running, rerr := p.IsRunningWithContext(ctx); rerr != nil || !running {
		return ErrNotFound
	}
	return fmt.Errorf("failed to read process %d: %w", p.Pid, err)
}

// readFields fills f. Name and status are required; fields the caller may
// not read (another user's io counters, for example) stay zero.
func readFields(ctx context.Context, p *process.Process, f *Fact) error {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return err
	}
	f.Name = name
	f.CreateTime = metrics.FormatCtime(time.UnixMilli(f.created))

	if username, err := p.UsernameWithContext(ctx); err == nil {
		f.Username = username
	}
	if uids, err := p.UidsWithContext(ctx); err == nil {
		f.UIDs = idTriple(uids)
	}
	if gids, err := p.GidsWithContext(ctx); err == nil {
		f.GIDs = idTriple(gids)
	}
	if pct, err := p.MemoryPercentWithContext(ctx); err == nil {
		f.MemoryPercent = pct
	}
	if pct, err := p.CPUPercentWithContext(ctx); err == nil {
		f.CPUPercent = pct
	}
	if cs, err := p.NumCtxSwitchesWithContext(ctx); err == nil && cs != nil {
		f.NumCtxSwitches = CtxSwitches{Voluntary: cs.Voluntary, Involuntary: cs.Involuntary}
	}
	if times, err := p.TimesWithContext(ctx); err == nil && times != nil {
		f.CPUTimes.User = times.User
		f.CPUTimes.System = times.System
		f.CPUTimes.Iowait = times.Iowait
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		f.NumThreads = n
	}
	if tty, err := p.TerminalWithContext(ctx); err == nil && tty != "" {
		f.Terminal = &tty
	}

	return readPlatformFields(ctx, p, f)
}

// idTriple pads short id lists; some platforms report only real and effective
func idTriple(ids []uint32) IDs {
	var t IDs
	if len(ids) > 0 {
		t.Real = ids[0]
		t.Effective = ids[0]
		t.Saved = ids[0]
	}
	if len(ids) > 1 {
		t.Effective = ids[1]
		t.Saved = ids[1]
	}
	if len(ids) > 2 {
		t.Saved = ids[2]
	}
	return t
}

// normalizeStatus maps gopsutil status names onto the normalized vocabulary
func normalizeStatus(status []string) string {
	if len(status) == 0 {
		return StatusUnknown
	}
	switch status[0] {
	case process.Running:
		return StatusRunning
	case process.Sleep:
		return StatusSleeping
	case process.Blocked:
		return StatusDiskSleep
	case process.Stop:
		return StatusStopped
	case process.Zombie:
		return StatusZombie
	case process.Idle:
		return StatusIdle
	case process.Wait:
		return StatusWaiting
	case process.Lock:
		return StatusLocked
	}
	return StatusUnknown
}
