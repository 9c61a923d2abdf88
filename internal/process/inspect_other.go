//go:build !linux

package process

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

func readPlatformFields(ctx context.Context, p *process.Process, f *Fact) error {
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		return err
	}
	f.Status = normalizeStatus(status)

	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		f.MemoryInfo.RSS = mem.RSS
		f.MemoryInfo.VMS = mem.VMS
	}
	return nil
}
