package metrics

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// VirtualMemory reads system memory usage
func (h *Host) VirtualMemory(ctx context.Context) (VirtualMemory, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return VirtualMemory{}, fmt.Errorf("failed to read virtual memory: %w", err)
	}

	return VirtualMemory{
		Total:     v.Total,
		Available: v.Available,
		Percent:   clampPercent(v.UsedPercent),
		Used:      v.Used,
		Active:    v.Active,
		Inactive:  v.Inactive,
		Buffers:   v.Buffers,
		Cached:    v.Cached,
		Shared:    v.Shared,
		Slab:      v.Slab,
	}, nil
}

// Swap reads swap usage
func (h *Host) Swap(ctx context.Context) (Swap, error) {
	s, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Swap{}, fmt.Errorf("failed to read swap memory: %w", err)
	}

	return Swap{
		Total:   s.Total,
		Used:    s.Used,
		Free:    s.Free,
		Percent: clampPercent(s.UsedPercent),
		Sin:     s.Sin,
		Sout:    s.Sout,
	}, nil
}
