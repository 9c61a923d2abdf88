package metrics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/sensors"
)

// Temperatures reads every temperature sensor grouped by chip. Hosts without
// sensors yield an empty map.
func (h *Host) Temperatures(ctx context.Context) (map[string][]Temperature, error) {
	return h.readTemperatures(ctx)
}

// gopsutilTemperatures reads through gopsutil. Its keys join chip name and
// label with "_", and chip names contain "_" themselves, so a key is kept
// whole as the chip. Only sources whose keys carry no label come through here.
func gopsutilTemperatures(ctx context.Context) (map[string][]Temperature, error) {
	temps, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		// gopsutil reports unreadable entries as warnings next to partial results
		return nil, fmt.Errorf("failed to read temperatures: %w", err)
	}
	return groupTemperatures(temps), nil
}

func groupTemperatures(temps []sensors.TemperatureStat) map[string][]Temperature {
	out := make(map[string][]Temperature)
	for _, t := range temps {
		out[t.SensorKey] = append(out[t.SensorKey], Temperature{
			Current:  t.Temperature,
			High:     t.High,
			Critical: t.Critical,
		})
	}
	return out
}

func sortTemperatures(out map[string][]Temperature) {
	for chip := range out {
		readings := out[chip]
		sort.SliceStable(readings, func(i, j int) bool { return readings[i].Label < readings[j].Label })
	}
}

// Fans reads every fan sensor grouped by chip
func (h *Host) Fans(ctx context.Context) (map[string][]Fan, error) {
	return h.readFans()
}

// Battery reads the primary battery, or NoBattery when there is none
func (h *Host) Battery(ctx context.Context) (Battery, error) {
	return h.readBattery()
}
