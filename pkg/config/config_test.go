package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 10s
logging:
  level: debug
  format: json
  output: stdout
providers:
  alpha_vantage_key: test-key
  timeout: 15s
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "test" {
		t.Errorf("environment = %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Providers.AlphaVantageKey != "test-key" {
		t.Errorf("alpha vantage key = %q", cfg.Providers.AlphaVantageKey)
	}
	if cfg.Providers.Timeout != 15*time.Second {
		t.Errorf("provider timeout = %v", cfg.Providers.Timeout)
	}

	// Unset sections pick up defaults.
	if cfg.Cache.Backend != "memory" {
		t.Errorf("cache backend = %q, want memory default", cfg.Cache.Backend)
	}
	if cfg.Stream.SendBuffer <= 0 || cfg.Stream.PongWait <= 0 {
		t.Errorf("stream defaults not applied: %+v", cfg.Stream)
	}
}

func TestLoadMissingEnvironment(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing environment")
	}
}

func TestLoadInvalidCacheBackend(t *testing.T) {
	path := writeConfig(t, "environment: test\ncache:\n  backend: memcached\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported cache backend")
	}
}

func TestLoadKafkaValidation(t *testing.T) {
	path := writeConfig(t, "environment: test\nkafka:\n  enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for enabled kafka without brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	t.Setenv("ALPHA_VANTAGE_KEY", "env-key")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers.AlphaVantageKey != "env-key" {
		t.Errorf("env override not applied: %q", cfg.Providers.AlphaVantageKey)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}
