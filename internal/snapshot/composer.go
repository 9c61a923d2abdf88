package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	constants "pimonitor/config"
	"pimonitor/internal/logger"
	"pimonitor/internal/metrics"
)

// Composer reads every category of a snapshot concurrently. A category that
// fails, panics or outlives Timeout is replaced by its placeholder, so a
// snapshot is always complete.
type Composer struct {
	Source  metrics.Source
	Timeout time.Duration

	latest atomic.Pointer[LiveSnapshot]
}

// NewComposer returns a Composer over src with the given per-category deadline
func NewComposer(src metrics.Source, timeout time.Duration) *Composer {
	return &Composer{Source: src, Timeout: timeout}
}

func (c *Composer) timeout() time.Duration {
	if c.Timeout <= 0 {
		return constants.DEFAULT_CATEGORY_TIMEOUT_MS * time.Millisecond
	}
	return c.Timeout
}

// Latest returns the most recent live snapshot, or nil before the first one
func (c *Composer) Latest() *LiveSnapshot {
	return c.latest.Load()
}

// Live composes the fast-changing snapshot
func (c *Composer) Live(ctx context.Context) *LiveSnapshot {
	src := c.Source
	snap := &LiveSnapshot{}

	// Each goroutine writes a distinct field; Wait publishes them all
	var g errgroup.Group
	g.Go(func() error {
		snap.VirtualMemory = collect(ctx, c, CategoryVirtualMemory, metrics.VirtualMemory{}, src.VirtualMemory)
		return nil
	})
	g.Go(func() error {
		snap.Swap = collect(ctx, c, CategorySwap, metrics.Swap{}, src.Swap)
		return nil
	})
	g.Go(func() error {
		snap.CPUStats = collect(ctx, c, CategoryCPUStats, metrics.CPUStats{}, src.CPUStats)
		return nil
	})
	g.Go(func() error {
		snap.CPUTimes = collectMap(ctx, c, CategoryCPUTimes, src.CPUTimes)
		return nil
	})
	g.Go(func() error {
		snap.CPUPercent = collectMap(ctx, c, CategoryCPUPercent, src.CPUPercent)
		return nil
	})
	g.Go(func() error {
		snap.CPUClock = collectMap(ctx, c, CategoryCPUClock, src.CPUClock)
		return nil
	})
	g.Go(func() error {
		snap.DiskIO = collectMap(ctx, c, CategoryDiskIO, src.DiskIO)
		return nil
	})
	g.Go(func() error {
		snap.NetIO = collectMap(ctx, c, CategoryNetIO, src.NetIO)
		return nil
	})
	g.Go(func() error {
		snap.Processes = collectMap(ctx, c, CategoryProcesses, src.Processes)
		return nil
	})
	g.Go(func() error {
		snap.Sensors = c.sensors(ctx)
		return nil
	})
	_ = g.Wait()

	snapshotsTotal.WithLabelValues("live").Inc()
	c.latest.Store(snap)
	metrics.SetCachedReading(&metrics.Reading{
		Memory:     snap.VirtualMemory,
		Swap:       snap.Swap,
		CPUPercent: snap.CPUPercent,
		DiskIO:     snap.DiskIO,
		NetIO:      snap.NetIO,
		Sensors:    snap.Sensors,
		Processes:  len(snap.Processes),
		Taken:      time.Now(),
	})
	return snap
}

// Dead composes the host inventory snapshot
func (c *Composer) Dead(ctx context.Context) *DeadSnapshot {
	src := c.Source
	snap := &DeadSnapshot{}

	var g errgroup.Group
	g.Go(func() error {
		snap.OSName = collect(ctx, c, CategoryUname, metrics.Uname{}, src.Uname)
		return nil
	})
	g.Go(func() error {
		n := collect(ctx, c, CategoryCPUCount, 0, src.CPUCount)
		snap.CPUCount = strconv.Itoa(n)
		return nil
	})
	g.Go(func() error {
		snap.CPUClock = collectMap(ctx, c, CategoryCPUClock, src.CPUClock)
		return nil
	})
	g.Go(func() error {
		snap.Partitions = collect(ctx, c, CategoryPartitions, []metrics.Partition{}, src.Partitions)
		if snap.Partitions == nil {
			snap.Partitions = []metrics.Partition{}
		}
		return nil
	})
	g.Go(func() error {
		snap.DiskIO = collectMap(ctx, c, CategoryDiskIO, src.DiskIO)
		return nil
	})
	g.Go(func() error {
		snap.NetIO = collectMap(ctx, c, CategoryNetIO, src.NetIO)
		return nil
	})
	g.Go(func() error {
		snap.NetAddrs = collectMap(ctx, c, CategoryNetAddrs, src.NetAddrs)
		return nil
	})
	g.Go(func() error {
		snap.NetStats = collectMap(ctx, c, CategoryNetStats, src.NetStats)
		return nil
	})
	g.Go(func() error {
		boot := collect(ctx, c, CategoryBootTime, time.Time{}, src.BootTime)
		if boot.IsZero() {
			boot = time.Unix(0, 0)
		}
		snap.BootTime = metrics.FormatCtime(boot)
		return nil
	})
	g.Go(func() error {
		snap.Processes = collectMap(ctx, c, CategoryProcesses, src.Processes)
		return nil
	})
	g.Go(func() error {
		snap.Sensors = c.sensors(ctx)
		return nil
	})
	_ = g.Wait()

	snapshotsTotal.WithLabelValues("dead").Inc()
	return snap
}

// sensors reads the three sensor facilities independently so a missing one
// does not blank the others
func (c *Composer) sensors(ctx context.Context) metrics.Sensors {
	src := c.Source
	var s metrics.Sensors

	var g errgroup.Group
	g.Go(func() error {
		s.Temperatures = collectMap(ctx, c, CategoryTemperatures, src.Temperatures)
		return nil
	})
	g.Go(func() error {
		s.Fans = collectMap(ctx, c, CategoryFans, src.Fans)
		return nil
	})
	g.Go(func() error {
		s.Battery = collect(ctx, c, CategoryBattery, metrics.NoBattery, src.Battery)
		return nil
	})
	_ = g.Wait()
	return s
}

type result[T any] struct {
	value T
	err   error
}

// collect runs read under the category deadline and returns placeholder when
// it errors, panics or does not answer in time. A read that ignores its
// context keeps running in the background and its late result is discarded.
func collect[T any](ctx context.Context, c *Composer, category string, placeholder T, read func(context.Context) (T, error)) T {
	start := time.Now()
	defer func() {
		categoryDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	}()

	cctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: &panicError{value: r}}
			}
		}()
		v, err := read(cctx)
		done <- result[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			fail(category, r.err)
			return placeholder
		}
		return r.value
	case <-cctx.Done():
		fail(category, cctx.Err())
		return placeholder
	}
}

// collectMap is collect for map categories, which must never be nil
func collectMap[K comparable, V any](ctx context.Context, c *Composer, category string, read func(context.Context) (map[K]V, error)) map[K]V {
	m := collect(ctx, c, category, map[K]V{}, read)
	if m == nil {
		return map[K]V{}
	}
	return m
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func fail(category string, err error) {
	var pe *panicError
	reason := reasonError
	switch {
	case errors.Is(err, metrics.ErrUnsupported):
		reason = reasonUnsupported
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		reason = reasonTimeout
	case errors.As(err, &pe):
		reason = reasonPanic
	}
	categoryFailures.WithLabelValues(category, reason).Inc()

	if reason == reasonUnsupported {
		logger.Debug("Category %s unavailable on this host", category)
		return
	}
	logger.Warning("Category %s replaced by placeholder (%s): %v", category, reason, err)
}
