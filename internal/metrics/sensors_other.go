//go:build !linux

package metrics

import "context"

func (h *Host) readTemperatures(ctx context.Context) (map[string][]Temperature, error) {
	out, err := gopsutilTemperatures(ctx)
	if err != nil {
		return nil, err
	}
	sortTemperatures(out)
	return out, nil
}

func (h *Host) readFans() (map[string][]Fan, error) {
	return nil, ErrUnsupported
}

func (h *Host) readBattery() (Battery, error) {
	return NoBattery, ErrUnsupported
}

func (h *Host) linkSettings(iface string) (int, int) {
	return DuplexUnknown, 0
}
