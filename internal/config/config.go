package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	constants "pimonitor/config"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	OTLP     OTLPConfig     `mapstructure:"otlp"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Port            int     `mapstructure:"port"`
	IPVersion       string  `mapstructure:"ip_version"`
	Passcode        string  `mapstructure:"passcode"`
	StaticDir       string  `mapstructure:"static_dir"`
	ReadTimeout     int     `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int     `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int     `mapstructure:"shutdown_timeout"` // seconds
	RateLimit       float64 `mapstructure:"rate_limit"`
	RateBurst       int     `mapstructure:"rate_burst"`
	MetricsEnabled  bool    `mapstructure:"metrics_enabled"`
}

// SnapshotConfig controls category collection
type SnapshotConfig struct {
	CategoryTimeout   int `mapstructure:"category_timeout"`    // milliseconds
	CPUSampleInterval int `mapstructure:"cpu_sample_interval"` // milliseconds
}

// OTLPConfig enables pushing live gauges to an OTLP/HTTP collector
type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Interval int    `mapstructure:"interval"` // seconds
	Insecure bool   `mapstructure:"insecure"`
}

// LogConfig controls the leveled logger
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Address returns the listen address for the configured IP version
func (s ServerConfig) Address() string {
	host := constants.BIND_ADDRESS_ANY
	switch s.IPVersion {
	case constants.IP_VERSION_4:
		host = constants.BIND_ADDRESS_IPV4
	case constants.IP_VERSION_6:
		host = constants.BIND_ADDRESS_IPV6
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// ReferenceURI returns the URI printed in the startup banner
func (s ServerConfig) ReferenceURI() string {
	host := "localhost"
	switch s.IPVersion {
	case constants.IP_VERSION_4:
		host = "127.0.0.1"
	case constants.IP_VERSION_6:
		host = "::1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// CategoryTimeoutDuration returns the per-category collection deadline
func (c SnapshotConfig) CategoryTimeoutDuration() time.Duration {
	return time.Duration(c.CategoryTimeout) * time.Millisecond
}

// CPUSampleDuration returns the cpu percent sampling window
func (c SnapshotConfig) CPUSampleDuration() time.Duration {
	return time.Duration(c.CPUSampleInterval) * time.Millisecond
}

// Enabled reports whether OTLP export is configured
func (o OTLPConfig) Enabled() bool {
	return o.Endpoint != ""
}

// Validate checks the loaded configuration for values the server cannot run with
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1-65535, got %d", cfg.Server.Port))
	}
	switch cfg.Server.IPVersion {
	case constants.IP_VERSION_ANY, constants.IP_VERSION_4, constants.IP_VERSION_6:
	default:
		errs = append(errs, fmt.Errorf("server.ip_version must be empty, 4 or 6, got %q", cfg.Server.IPVersion))
	}
	if cfg.Server.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must be positive, got %v", cfg.Server.RateLimit))
	}
	if cfg.Server.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be positive, got %d", cfg.Server.RateBurst))
	}
	if cfg.Snapshot.CategoryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("snapshot.category_timeout must be positive, got %d", cfg.Snapshot.CategoryTimeout))
	}
	if cfg.Snapshot.CPUSampleInterval < 0 {
		errs = append(errs, fmt.Errorf("snapshot.cpu_sample_interval must not be negative, got %d", cfg.Snapshot.CPUSampleInterval))
	}
	if cfg.Snapshot.CPUSampleInterval >= cfg.Snapshot.CategoryTimeout && cfg.Snapshot.CategoryTimeout > 0 {
		errs = append(errs, errors.New("snapshot.cpu_sample_interval must be shorter than snapshot.category_timeout"))
	}

	return errors.Join(errs...)
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", constants.DEFAULT_PORT)
	v.SetDefault("server.ip_version", constants.IP_VERSION_ANY)
	v.SetDefault("server.passcode", "")
	v.SetDefault("server.static_dir", constants.DEFAULT_STATIC_DIR)
	v.SetDefault("server.read_timeout", constants.DEFAULT_READ_TIMEOUT_SECONDS)
	v.SetDefault("server.write_timeout", constants.DEFAULT_WRITE_TIMEOUT_SECONDS)
	v.SetDefault("server.shutdown_timeout", constants.DEFAULT_SHUTDOWN_TIMEOUT_SECONDS)
	v.SetDefault("server.rate_limit", constants.DEFAULT_RATE_LIMIT)
	v.SetDefault("server.rate_burst", constants.DEFAULT_RATE_BURST)
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("snapshot.category_timeout", constants.DEFAULT_CATEGORY_TIMEOUT_MS)
	v.SetDefault("snapshot.cpu_sample_interval", constants.DEFAULT_CPU_SAMPLE_INTERVAL_MS)
	v.SetDefault("otlp.endpoint", "")
	v.SetDefault("otlp.interval", constants.DEFAULT_OTLP_INTERVAL_SECONDS)
	v.SetDefault("otlp.insecure", false)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.file", constants.LOG_FILE)
}

// LoadConfig loads configuration from file and environment using the global viper instance.
// configFile overrides the search path when set.
func LoadConfig(configFile string) (*Config, error) {
	return Load(viper.GetViper(), configFile)
}

// Load reads configuration into v and decodes it
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("PIMONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME" + constants.CONFIG_DIR_NAME)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes a minimal config file with the values an operator usually pins
func SaveConfig(cfg *Config) error {
	configDir := os.Getenv("HOME") + constants.CONFIG_DIR_NAME
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	var configLines []string
	configLines = append(configLines, "server:")
	configLines = append(configLines, fmt.Sprintf("  port: %d", cfg.Server.Port))
	if cfg.Server.IPVersion != "" {
		configLines = append(configLines, fmt.Sprintf("  ip_version: %q", cfg.Server.IPVersion))
	}
	if cfg.Server.Passcode != "" {
		configLines = append(configLines, fmt.Sprintf("  passcode: %q", cfg.Server.Passcode))
	}
	configLines = append(configLines, fmt.Sprintf("  static_dir: %q", cfg.Server.StaticDir))
	if cfg.OTLP.Endpoint != "" {
		configLines = append(configLines, "otlp:")
		configLines = append(configLines, fmt.Sprintf("  endpoint: %s", cfg.OTLP.Endpoint))
	}

	configFile := configDir + "/config.yaml"
	return os.WriteFile(configFile, []byte(strings.Join(configLines, "\n")+"\n"), 0600)
}
