package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
record_log:
  type: redis
  max_records: 500
  redis:
    endpoints: ["redis-1:6379"]
    db: 3
catalog:
  type: shared
session:
  type: shared
engine:
  read_window: 250
  display_limit: 10
  strict_uniqueness: true
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.RecordLog.Type != "redis" || cfg.RecordLog.MaxRecords != 500 {
		t.Errorf("record log = %+v", cfg.RecordLog)
	}
	if len(cfg.RecordLog.Redis.Endpoints) != 1 || cfg.RecordLog.Redis.DB != 3 {
		t.Errorf("redis = %+v", cfg.RecordLog.Redis)
	}
	if cfg.Engine.ReadWindow != 250 || cfg.Engine.DisplayLimit != 10 || !cfg.Engine.StrictUniqueness {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	// Untouched sections keep their defaults.
	if cfg.ChangeFeed.DrainRate != 50 {
		t.Errorf("change feed defaults lost: %+v", cfg.ChangeFeed)
	}
}

func TestLoadFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"engine": {"read_window": 42}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Engine.ReadWindow != 42 {
		t.Errorf("read window = %d, want 42", cfg.Engine.ReadWindow)
	}
}

func TestLoadFromFileRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte(""), 0o644)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("CHATQL_RECORDLOG_TYPE", "mysql")
	t.Setenv("CHATQL_MYSQL_HOST", "db.internal")
	t.Setenv("CHATQL_MYSQL_PORT", "3307")
	t.Setenv("CHATQL_ENGINE_READ_WINDOW", "77")
	t.Setenv("CHATQL_ENGINE_STRICT_UNIQUENESS", "true")
	t.Setenv("CHATQL_LOG_LEVEL", "warn")

	cfg := Default()
	cfg.LoadFromEnv()

	if cfg.RecordLog.Type != "mysql" {
		t.Errorf("type = %q", cfg.RecordLog.Type)
	}
	if cfg.RecordLog.MySQL.Host != "db.internal" || cfg.RecordLog.MySQL.Port != 3307 {
		t.Errorf("mysql = %+v", cfg.RecordLog.MySQL)
	}
	if cfg.Engine.ReadWindow != 77 || !cfg.Engine.StrictUniqueness {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown record log type", func(c *Config) { c.RecordLog.Type = "tape" }},
		{"unknown catalog type", func(c *Config) { c.Catalog.Type = "etcd" }},
		{"shared catalog without backend", func(c *Config) { c.Catalog.Type = "shared" }},
		{"shared session without redis", func(c *Config) { c.Session.Type = "shared" }},
		{"zero read window", func(c *Config) { c.Engine.ReadWindow = 0 }},
		{"zero display limit", func(c *Config) { c.Engine.DisplayLimit = 0 }},
		{"kafka feed without brokers", func(c *Config) {
			c.ChangeFeed.Enabled = true
			c.ChangeFeed.QueueType = "kafka"
			c.ChangeFeed.Kafka.Brokers = nil
		}},
		{"enabled feed with zero drain rate", func(c *Config) {
			c.ChangeFeed.Enabled = true
			c.ChangeFeed.DrainRate = 0
		}},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}

func TestSessionTTLDefault(t *testing.T) {
	if Default().Session.TTL != 30*24*time.Hour {
		t.Errorf("session TTL default = %v", Default().Session.TTL)
	}
}
