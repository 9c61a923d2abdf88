package metrics

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func registerAllMetrics(m metric.Meter) error {
	for _, register := range []func(metric.Meter) error{
		registerMemoryMetrics,
		registerCPUMetrics,
		registerDiskMetrics,
		registerNetworkMetrics,
		registerSensorMetrics,
		registerProcessMetrics,
	} {
		if err := register(m); err != nil {
			return err
		}
	}
	return nil
}

func registerMemoryMetrics(m metric.Meter) error {
	_, err := m.Int64ObservableGauge(
		"pimonitor.memory.usage",
		metric.WithDescription("Virtual memory usage by state"),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r := GetCachedReading()
			if r == nil {
				return nil
			}
			o.Observe(int64(r.Memory.Used), metric.WithAttributes(attribute.String("state", "used")))
			o.Observe(int64(r.Memory.Available), metric.WithAttributes(attribute.String("state", "available")))
			o.Observe(int64(r.Memory.Cached), metric.WithAttributes(attribute.String("state", "cached")))
			o.Observe(int64(r.Memory.Buffers), metric.WithAttributes(attribute.String("state", "buffers")))
			o.Observe(int64(r.Swap.Used), metric.WithAttributes(attribute.String("state", "swap_used")))
			return nil
		}),
	)
	if err != nil {
		return err
	}

	_, err = m.Float64ObservableGauge(
		"pimonitor.memory.utilization",
		metric.WithDescription("Virtual memory used percent"),
		metric.WithUnit("%"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			if r := GetCachedReading(); r != nil {
				o.Observe(r.Memory.Percent)
			}
			return nil
		}),
	)
	return err
}

func registerCPUMetrics(m metric.Meter) error {
	_, err := m.Float64ObservableGauge(
		"pimonitor.cpu.utilization",
		metric.WithDescription("Per-core busy percent"),
		metric.WithUnit("%"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			r := GetCachedReading()
			if r == nil {
				return nil
			}
			for core, pct := range r.CPUPercent {
				o.Observe(pct, metric.WithAttributes(attribute.String("cpu", strconv.Itoa(core))))
			}
			return nil
		}),
	)
	return err
}

func registerDiskMetrics(m metric.Meter) error {
	_, err := m.Int64ObservableCounter(
		"pimonitor.disk.io",
		metric.WithDescription("Cumulative bytes transferred per block device"),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r := GetCachedReading()
			if r == nil {
				return nil
			}
			for device, c := range r.DiskIO {
				o.Observe(int64(c.ReadBytes), metric.WithAttributes(
					attribute.String("device", device), attribute.String("direction", "read")))
				o.Observe(int64(c.WriteBytes), metric.WithAttributes(
					attribute.String("device", device), attribute.String("direction", "write")))
			}
			return nil
		}),
	)
	return err
}

func registerNetworkMetrics(m metric.Meter) error {
	_, err := m.Int64ObservableCounter(
		"pimonitor.network.io",
		metric.WithDescription("Cumulative bytes transferred per interface"),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r := GetCachedReading()
			if r == nil {
				return nil
			}
			for iface, c := range r.NetIO {
				o.Observe(int64(c.BytesRecv), metric.WithAttributes(
					attribute.String("interface", iface), attribute.String("direction", "receive")))
				o.Observe(int64(c.BytesSent), metric.WithAttributes(
					attribute.String("interface", iface), attribute.String("direction", "transmit")))
			}
			return nil
		}),
	)
	return err
}

func registerSensorMetrics(m metric.Meter) error {
	_, err := m.Float64ObservableGauge(
		"pimonitor.sensor.temperature",
		metric.WithDescription("Temperature per sensor"),
		metric.WithUnit("Cel"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			r := GetCachedReading()
			if r == nil {
				return nil
			}
			for chip, readings := range r.Sensors.Temperatures {
				for _, t := range readings {
					o.Observe(t.Current, metric.WithAttributes(
						attribute.String("chip", chip), attribute.String("label", t.Label)))
				}
			}
			return nil
		}),
	)
	if err != nil {
		return err
	}

	_, err = m.Float64ObservableGauge(
		"pimonitor.battery.charge",
		metric.WithDescription("Battery charge percent"),
		metric.WithUnit("%"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			if r := GetCachedReading(); r != nil {
				o.Observe(r.Sensors.Battery.Percent, metric.WithAttributes(
					attribute.Bool("power_plugged", r.Sensors.Battery.PowerPlugged)))
			}
			return nil
		}),
	)
	return err
}

func registerProcessMetrics(m metric.Meter) error {
	_, err := m.Int64ObservableGauge(
		"pimonitor.process.count",
		metric.WithDescription("Number of processes in the last listing"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			if r := GetCachedReading(); r != nil {
				o.Observe(int64(r.Processes))
			}
			return nil
		}),
	)
	return err
}
