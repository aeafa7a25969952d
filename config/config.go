// Package config loads the healthops YAML configuration file, applying
// defaults and expanding ${ENV_VAR} references in values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "HEALTHOPS_CONFIG"

// Duration wraps time.Duration for YAML decoding of values like "15s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Service ServiceConfig `yaml:"service"`
	Storage StorageConfig `yaml:"storage"`
	Serve   ServeConfig   `yaml:"serve"`
	Checks  ChecksConfig  `yaml:"checks"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServiceConfig configures the orchestrator.
type ServiceConfig struct {
	MaxWorkers      int      `yaml:"max_workers"`
	CheckTimeout    Duration `yaml:"check_timeout"`
	MaxAttempts     int      `yaml:"max_attempts"`
	Backoff         Duration `yaml:"backoff"`
	TTLHealthy      Duration `yaml:"ttl_healthy"`
	TTLWarning      Duration `yaml:"ttl_warning"`
	TTLCritical     Duration `yaml:"ttl_critical"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

// StorageConfig locates the alert/metric database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `yaml:"addr"`

	// AuthSecret enables bearer-token auth on mutating alert endpoints
	// when non-empty. Supports ${ENV_VAR} expansion.
	AuthSecret string `yaml:"auth_secret"`

	// Metrics mounts /metrics when true.
	Metrics bool `yaml:"metrics"`
}

// ChecksConfig enables and tunes the individual probes.
type ChecksConfig struct {
	Database DatabaseCheck `yaml:"database"`
	Cache    CacheCheck    `yaml:"cache"`
	Memory   ResourceCheck `yaml:"memory"`
	Disk     DiskCheck     `yaml:"disk"`
	Load     LoadCheck     `yaml:"load"`
	Logs     LogsCheck     `yaml:"logs"`
	APIUsage APIUsageCheck `yaml:"api_usage"`
	Worker   WorkerCheck   `yaml:"worker"`
	Store    StoreCheck    `yaml:"store"`
}

// DatabaseCheck configures the database probe.
type DatabaseCheck struct {
	Enabled     bool     `yaml:"enabled"`
	Driver      string   `yaml:"driver"`
	DSN         string   `yaml:"dsn"`
	WarnLatency Duration `yaml:"warn_latency"`
}

// CacheCheck configures the Redis cache probe and shared Redis client.
type CacheCheck struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ResourceCheck configures a percent-threshold probe.
type ResourceCheck struct {
	Enabled         bool    `yaml:"enabled"`
	WarningPercent  float64 `yaml:"warning_percent"`
	CriticalPercent float64 `yaml:"critical_percent"`
}

// DiskCheck configures the disk probe.
type DiskCheck struct {
	Enabled         bool    `yaml:"enabled"`
	Path            string  `yaml:"path"`
	WarningPercent  float64 `yaml:"warning_percent"`
	CriticalPercent float64 `yaml:"critical_percent"`
}

// LoadCheck configures the load probe.
type LoadCheck struct {
	Enabled         bool    `yaml:"enabled"`
	WarningPerCore  float64 `yaml:"warning_per_core"`
	CriticalPerCore float64 `yaml:"critical_per_core"`
}

// LogsCheck configures the log file probe.
type LogsCheck struct {
	Enabled        bool   `yaml:"enabled"`
	Path           string `yaml:"path"`
	MaxSizeBytes   int64  `yaml:"max_size_bytes"`
	WarningErrors  int    `yaml:"warning_errors"`
	CriticalErrors int    `yaml:"critical_errors"`
}

// APIUsageCheck configures the API quota probe. Usage is read from a Redis
// counter key maintained by the application.
type APIUsageCheck struct {
	Enabled    bool   `yaml:"enabled"`
	CounterKey string `yaml:"counter_key"`
	Limit      int64  `yaml:"limit"`
}

// WorkerCheck configures the background worker probe.
type WorkerCheck struct {
	Enabled        bool     `yaml:"enabled"`
	HeartbeatKey   string   `yaml:"heartbeat_key"`
	QueueKey       string   `yaml:"queue_key"`
	StaleAfter     Duration `yaml:"stale_after"`
	WarnQueueDepth int64    `yaml:"warn_queue_depth"`
}

// StoreCheck configures the in-memory store probe.
type StoreCheck struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Service: ServiceConfig{
			MaxWorkers:      4,
			CheckTimeout:    Duration(15 * time.Second),
			MaxAttempts:     3,
			Backoff:         Duration(500 * time.Millisecond),
			TTLHealthy:      Duration(60 * time.Second),
			TTLWarning:      Duration(30 * time.Second),
			TTLCritical:     Duration(10 * time.Second),
			RefreshInterval: Duration(60 * time.Second),
		},
		Storage: StorageConfig{Path: defaultStoragePath()},
		Serve:   ServeConfig{Addr: ":8090", Metrics: true},
		Checks: ChecksConfig{
			Memory: ResourceCheck{Enabled: true},
			Disk:   DiskCheck{Enabled: true, Path: "/"},
			Load:   LoadCheck{Enabled: true},
			Store:  StoreCheck{Enabled: true},
		},
	}
}

// Load reads the configuration from path. Empty path falls back to
// $HEALTHOPS_CONFIG, then ~/.healthops/config.yaml; a missing file yields
// the defaults. ${ENV_VAR} references in the file are expanded before
// parsing, so secrets can stay out of the file itself.
func Load(path string) (Config, error) {
	path = resolvePath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.Expand(string(data), func(name string) string {
		return os.Getenv(name)
	})

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func resolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return filepath.Join(homeDir(), ".healthops", "config.yaml")
}

func defaultStoragePath() string {
	return filepath.Join(homeDir(), ".healthops", "healthops.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
