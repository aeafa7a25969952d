package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Service.MaxWorkers != 4 {
		t.Errorf("Service.MaxWorkers = %d, want 4", cfg.Service.MaxWorkers)
	}
	if cfg.Service.CheckTimeout.Std() != 15*time.Second {
		t.Errorf("Service.CheckTimeout = %v, want 15s", cfg.Service.CheckTimeout.Std())
	}
	if cfg.Service.TTLHealthy.Std() != 60*time.Second ||
		cfg.Service.TTLWarning.Std() != 30*time.Second ||
		cfg.Service.TTLCritical.Std() != 10*time.Second {
		t.Errorf("default TTLs = %v/%v/%v, want 60s/30s/10s",
			cfg.Service.TTLHealthy.Std(), cfg.Service.TTLWarning.Std(), cfg.Service.TTLCritical.Std())
	}
	if cfg.Serve.Addr != ":8090" {
		t.Errorf("Serve.Addr = %q, want :8090", cfg.Serve.Addr)
	}
	if !cfg.Checks.Memory.Enabled || !cfg.Checks.Disk.Enabled ||
		!cfg.Checks.Load.Enabled || !cfg.Checks.Store.Enabled {
		t.Error("resource probes should be enabled by default")
	}
	if cfg.Checks.Database.Enabled || cfg.Checks.Cache.Enabled {
		t.Error("external-dependency probes should be disabled by default")
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.MaxWorkers != Default().Service.MaxWorkers {
		t.Errorf("missing file should yield defaults, got %+v", cfg.Service)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
service:
  max_workers: 8
  check_timeout: 5s
  ttl_critical: 2s
serve:
  addr: ":9000"
checks:
  database:
    enabled: true
    driver: sqlite
    dsn: /var/lib/app/app.db
    warn_latency: 250ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Service.MaxWorkers != 8 {
		t.Errorf("Service.MaxWorkers = %d, want 8", cfg.Service.MaxWorkers)
	}
	if cfg.Service.CheckTimeout.Std() != 5*time.Second {
		t.Errorf("Service.CheckTimeout = %v, want 5s", cfg.Service.CheckTimeout.Std())
	}
	if cfg.Service.TTLCritical.Std() != 2*time.Second {
		t.Errorf("Service.TTLCritical = %v, want 2s", cfg.Service.TTLCritical.Std())
	}
	// Untouched keys keep their defaults.
	if cfg.Service.MaxAttempts != 3 {
		t.Errorf("Service.MaxAttempts = %d, want default 3", cfg.Service.MaxAttempts)
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("Serve.Addr = %q, want :9000", cfg.Serve.Addr)
	}
	if !cfg.Checks.Database.Enabled || cfg.Checks.Database.WarnLatency.Std() != 250*time.Millisecond {
		t.Errorf("database check = %+v", cfg.Checks.Database)
	}
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("TEST_DB_DSN", "/data/app.db")
	t.Setenv("TEST_AUTH_SECRET", "s3cret")

	path := writeConfig(t, `
serve:
  auth_secret: ${TEST_AUTH_SECRET}
checks:
  database:
    enabled: true
    dsn: ${TEST_DB_DSN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serve.AuthSecret != "s3cret" {
		t.Errorf("Serve.AuthSecret = %q, want expanded secret", cfg.Serve.AuthSecret)
	}
	if cfg.Checks.Database.DSN != "/data/app.db" {
		t.Errorf("Database.DSN = %q, want expanded path", cfg.Checks.Database.DSN)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "service: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestLoad_EnvPathFallback(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from $%s file", cfg.Logging.Level, EnvConfigPath)
	}
}

func TestDuration_YAML(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte(`"1m30s"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("Duration = %v, want 1m30s", d.Std())
	}

	if err := yaml.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Error("unmarshal should fail on a non-duration string")
	}

	out, err := yaml.Marshal(Duration(45 * time.Second))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "45s\n" {
		t.Errorf("marshal = %q, want 45s", out)
	}
}
