package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
environment: test
clickhouse:
  host: localhost
  port: 9000
  database: foresight
redis:
  addr: localhost:6379
kafka:
  topic: forex.ticks
  consumer:
    group_id: test-group
    min_bytes: 1
    max_bytes: 1048576
stream:
  source: randomwalk
  instrument: EUR_USD
window:
  cadence: 30s
indicator:
  component: moving_average
  instrument: EUR_USD
  timescale: M
  selection: bid
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Window.Cadence != 30*time.Second {
		t.Fatalf("cadence = %v", cfg.Window.Cadence)
	}
	if cfg.Kafka.Consumer.GroupID != "test-group" {
		t.Fatalf("consumer group = %q", cfg.Kafka.Consumer.GroupID)
	}
	if cfg.Kafka.Consumer.MaxBytes != 1048576 {
		t.Fatalf("consumer max bytes = %d", cfg.Kafka.Consumer.MaxBytes)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default logging level = %q", cfg.Logging.Level)
	}
	if cfg.Indicator.PollInterval != 5*time.Second {
		t.Fatalf("default poll interval = %v", cfg.Indicator.PollInterval)
	}
	if cfg.Indicator.MaxBatch != 1000 {
		t.Fatalf("default max batch = %d", cfg.Indicator.MaxBatch)
	}
	if cfg.Redis.KeyPrefix != "foresight:queue" {
		t.Fatalf("default key prefix = %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Metrics.Port != 2112 {
		t.Fatalf("default metrics port = %d", cfg.Metrics.Port)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("default metrics path = %q", cfg.Metrics.Path)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	body := testYAML + "\n"
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Stream.Source = "carrier_pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown stream source accepted")
	}
}

func TestLoadRejectsMissingRedis(t *testing.T) {
	body := `
environment: test
clickhouse:
  host: localhost
  database: foresight
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("config without redis.addr accepted")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("STREAM_INSTRUMENT", "GBP_USD")

	cfg, err := LoadWithEnv(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Stream.Instrument != "GBP_USD" {
		t.Fatalf("instrument = %q", cfg.Stream.Instrument)
	}
}
