package metrics

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	constants "pimonitor/config"
)

// OTelConfig configures the OTLP/HTTP push exporter
type OTelConfig struct {
	Endpoint string // host:port of the collector
	Insecure bool
	Interval time.Duration
	Hostname string
	Version  string
}

// Reading is the subset of a live snapshot the exporter publishes
type Reading struct {
	Memory     VirtualMemory
	Swap       Swap
	CPUPercent map[int]float64
	DiskIO     map[string]DiskIO
	NetIO      map[string]NetIO
	Sensors    Sensors
	Processes  int
	Taken      time.Time
}

var (
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	otelMu        sync.Mutex
	otelStarted   bool

	// Cached reading for OTel callbacks
	cachedReading *Reading
	cacheMu       sync.RWMutex
)

// StartOTelExporter initializes and starts the OpenTelemetry metrics exporter
func StartOTelExporter(cfg *OTelConfig) error {
	otelMu.Lock()
	defer otelMu.Unlock()

	if otelStarted {
		return nil
	}

	if cfg.Endpoint == "" {
		return fmt.Errorf("OTLP config incomplete: endpoint required")
	}

	ctx := context.Background()

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
		otlpmetrichttp.WithURLPath(constants.OTLP_PATH),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 5 * time.Second,
			MaxInterval:     30 * time.Second,
			MaxElapsedTime:  2 * time.Minute,
		}),
		otlpmetrichttp.WithTimeout(30 * time.Second),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	hostname := cfg.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	// Not merged with resource.Default() to avoid schema URL conflicts
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(constants.APP_NAME),
		semconv.ServiceVersion(cfg.Version),
		semconv.HostName(hostname),
		attribute.String("os.type", runtime.GOOS),
	)

	interval := cfg.Interval
	if interval == 0 {
		interval = constants.DEFAULT_OTLP_INTERVAL_SECONDS * time.Second
	}

	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(interval),
			),
		),
	)

	otel.SetMeterProvider(meterProvider)

	meter = meterProvider.Meter(constants.APP_NAME,
		metric.WithInstrumentationVersion(cfg.Version),
	)

	if err := registerAllMetrics(meter); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	otelStarted = true
	return nil
}

// StopOTelExporter gracefully shuts down the OTel exporter
func StopOTelExporter() error {
	otelMu.Lock()
	defer otelMu.Unlock()

	if !otelStarted || meterProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := meterProvider.Shutdown(ctx)
	otelStarted = false
	meterProvider = nil
	meter = nil

	return err
}

// ForceFlush forces immediate export of all pending metrics
func ForceFlush() error {
	otelMu.Lock()
	defer otelMu.Unlock()

	if !otelStarted || meterProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return meterProvider.ForceFlush(ctx)
}

// IsOTelStarted returns true if the exporter is running
func IsOTelStarted() bool {
	otelMu.Lock()
	defer otelMu.Unlock()
	return otelStarted
}

// GetCachedReading returns the most recent reading (thread-safe)
func GetCachedReading() *Reading {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return cachedReading
}

// SetCachedReading updates the cached reading (thread-safe)
func SetCachedReading(r *Reading) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cachedReading = r
}
