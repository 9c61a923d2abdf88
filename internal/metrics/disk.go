package metrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// DiskIO reads cumulative counters per block device
func (h *Host) DiskIO(ctx context.Context) (map[string]DiskIO, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk counters: %w", err)
	}

	out := make(map[string]DiskIO, len(counters))
	for name, c := range counters {
		out[name] = DiskIO{
			ReadCount:        c.ReadCount,
			WriteCount:       c.WriteCount,
			ReadBytes:        c.ReadBytes,
			WriteBytes:       c.WriteBytes,
			ReadTime:         c.ReadTime,
			WriteTime:        c.WriteTime,
			ReadMergedCount:  c.MergedReadCount,
			WriteMergedCount: c.MergedWriteCount,
			BusyTime:         c.IoTime,
		}
	}
	return out, nil
}

// Partitions lists every mounted filesystem, including virtual ones
func (h *Host) Partitions(ctx context.Context) ([]Partition, error) {
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil && len(parts) == 0 {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	out := make([]Partition, 0, len(parts))
	for _, p := range parts {
		out = append(out, Partition{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
			Opts:       strings.Join(p.Opts, ","),
		})
	}
	return out, nil
}
