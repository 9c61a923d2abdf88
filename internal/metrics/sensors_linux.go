//go:build linux

package metrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	psenv "github.com/shirou/gopsutil/v4/common"
)

// hwmon reports temperatures in millidegrees Celsius
const hwmonTempScale = 1000.0

// readTemperatures walks /sys/class/hwmon for temp*_input attributes, keyed
// by the chip's name file. Hosts without hwmon temperatures fall back to the
// thermal zones gopsutil reads.
func (h *Host) readTemperatures(ctx context.Context) (map[string][]Temperature, error) {
	out := make(map[string][]Temperature)

	chips, err := os.ReadDir(h.sysPath("class", "hwmon"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list hwmon: %w", err)
	}

	for _, chip := range chips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := h.sysPath("class", "hwmon", chip.Name())
		inputs, _ := filepath.Glob(filepath.Join(dir, "temp*_input"))
		if len(inputs) == 0 {
			// some drivers keep attributes under device/
			inputs, _ = filepath.Glob(filepath.Join(dir, "device", "temp*_input"))
		}
		if len(inputs) == 0 {
			continue
		}
		sort.Strings(inputs)

		name, err := readSysString(filepath.Join(dir, "name"))
		if err != nil || name == "" {
			name = chip.Name()
		}

		for _, input := range inputs {
			current, err := readSysInt(input)
			if err != nil {
				continue
			}
			base := strings.TrimSuffix(input, "_input")
			label, _ := readSysString(base + "_label")
			high, _ := readSysInt(base + "_max")
			crit, _ := readSysInt(base + "_crit")
			out[name] = append(out[name], Temperature{
				Label:    label,
				Current:  float64(current) / hwmonTempScale,
				High:     float64(high) / hwmonTempScale,
				Critical: float64(crit) / hwmonTempScale,
			})
		}
	}

	if len(out) == 0 {
		zones, err := gopsutilTemperatures(h.gopsutilContext(ctx))
		if err != nil {
			return nil, err
		}
		out = zones
	}
	sortTemperatures(out)
	return out, nil
}

// gopsutilContext points gopsutil at the same sysfs root the Host reads
func (h *Host) gopsutilContext(ctx context.Context) context.Context {
	if h.sysRoot == "" {
		return ctx
	}
	return context.WithValue(ctx, psenv.EnvKey, psenv.EnvMap{psenv.HostSysEnvKey: h.sysRoot})
}

// readFans walks /sys/class/hwmon for fan*_input attributes
func (h *Host) readFans() (map[string][]Fan, error) {
	out := make(map[string][]Fan)

	chips, err := os.ReadDir(h.sysPath("class", "hwmon"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to list hwmon: %w", err)
	}

	for _, chip := range chips {
		dir := h.sysPath("class", "hwmon", chip.Name())
		inputs, _ := filepath.Glob(filepath.Join(dir, "fan*_input"))
		if len(inputs) == 0 {
			continue
		}
		sort.Strings(inputs)

		name, err := readSysString(filepath.Join(dir, "name"))
		if err != nil || name == "" {
			name = chip.Name()
		}

		for _, input := range inputs {
			rpm, err := readSysInt(input)
			if err != nil {
				continue
			}
			prefix := strings.TrimSuffix(filepath.Base(input), "_input")
			label, _ := readSysString(filepath.Join(dir, prefix+"_label"))
			out[name] = append(out[name], Fan{Label: label, Current: float64(rpm)})
		}
	}
	return out, nil
}

// readBattery reads the first BAT* supply in /sys/class/power_supply. Charge
// is taken from energy_* (µWh) or charge_* (µAh) attributes, whichever exist.
func (h *Host) readBattery() (Battery, error) {
	supplies, _ := filepath.Glob(h.sysPath("class", "power_supply", "BAT*"))
	if len(supplies) == 0 {
		return NoBattery, nil
	}
	sort.Strings(supplies)
	dir := supplies[0]

	now, full, rate, err := batteryLevels(dir)
	if err != nil {
		return NoBattery, err
	}

	b := Battery{SecsLeft: SecsLeftUnknown}
	if capacity, err := readSysInt(filepath.Join(dir, "capacity")); err == nil {
		b.Percent = float64(capacity)
	} else if full > 0 {
		b.Percent = float64(now) / float64(full) * 100
	}
	b.Percent = clampPercent(b.Percent)

	b.PowerPlugged = h.onMains(dir)
	switch {
	case b.PowerPlugged:
		b.SecsLeft = SecsLeftUnlimited
	case rate > 0:
		b.SecsLeft = int64(float64(now) / float64(rate) * 3600)
	}
	return b, nil
}

func batteryLevels(dir string) (now, full, rate int64, err error) {
	for _, kind := range []struct{ now, full, rate string }{
		{"energy_now", "energy_full", "power_now"},
		{"charge_now", "charge_full", "current_now"},
	} {
		n, errNow := readSysInt(filepath.Join(dir, kind.now))
		if errNow != nil {
			continue
		}
		f, _ := readSysInt(filepath.Join(dir, kind.full))
		r, _ := readSysInt(filepath.Join(dir, kind.rate))
		if r < 0 {
			r = -r
		}
		return n, f, r, nil
	}

	// capacity alone is enough for a percentage
	if _, err := os.Stat(filepath.Join(dir, "capacity")); err == nil {
		return 0, 0, 0, nil
	}
	return 0, 0, 0, fmt.Errorf("battery %s exposes no charge attributes", filepath.Base(dir))
}

// onMains reports whether an AC adapter is online; without one the battery
// status decides
func (h *Host) onMains(batteryDir string) bool {
	adapters, _ := filepath.Glob(h.sysPath("class", "power_supply", "*", "online"))
	for _, online := range adapters {
		if v, err := readSysInt(online); err == nil && v == 1 {
			return true
		}
	}
	if len(adapters) > 0 {
		return false
	}
	status, _ := readSysString(filepath.Join(batteryDir, "status"))
	return status != "Discharging"
}

// linkSettings reads duplex and speed from /sys/class/net; both are unknown on virtual links
func (h *Host) linkSettings(iface string) (int, int) {
	duplex := DuplexUnknown
	switch d, _ := readSysString(h.sysPath("class", "net", iface, "duplex")); d {
	case "full":
		duplex = DuplexFull
	case "half":
		duplex = DuplexHalf
	}

	speed := 0
	if s, err := readSysInt(h.sysPath("class", "net", iface, "speed")); err == nil && s > 0 {
		speed = int(s)
	}
	return duplex, speed
}
