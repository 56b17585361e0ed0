package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		t.Logf("Version: %s", version)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.CacheBackend != CacheBackendSQLite {
		t.Errorf("Expected cache backend 'sqlite', got '%s'", cfg.CacheBackend)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.ExpiryIntervalDuration() != time.Hour {
		t.Errorf("Expected expiry interval 1h, got %v", cfg.ExpiryIntervalDuration())
	}
	if cfg.CacheRetentionDuration() != 7*24*time.Hour {
		t.Errorf("Expected cache retention 168h, got %v", cfg.CacheRetentionDuration())
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected log format 'text', got '%s'", cfg.LogFormat)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestLoadArgs(t *testing.T) {
	cfg, err := load([]string{
		"--cache-backend", "redis",
		"--redis-addr", "cache:6380",
		"--port", "9090",
		"--api-key", "test-key",
		"--settings", "/etc/rss-canon/settings.yml",
		"--worker-count", "8",
		"--expiry-interval", "0",
		"--log-format", "json",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.CacheBackend != CacheBackendRedis {
		t.Errorf("Expected cache backend 'redis', got '%s'", cfg.CacheBackend)
	}
	if cfg.RedisAddr != "cache:6380" {
		t.Errorf("Expected redis addr 'cache:6380', got '%s'", cfg.RedisAddr)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.SettingsFile != "/etc/rss-canon/settings.yml" {
		t.Errorf("Expected settings file, got '%s'", cfg.SettingsFile)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.ExpiryInterval != 0 {
		t.Errorf("Expected expiry disabled, got %d", cfg.ExpiryInterval)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.LogFormat)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("WORKER_COUNT", "2")

	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.CacheBackend != CacheBackendMemory {
		t.Errorf("Expected cache backend 'memory', got '%s'", cfg.CacheBackend)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.WorkerCount)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown backend", []string{"--cache-backend", "postgres"}},
		{"zero workers", []string{"--worker-count", "0"}},
		{"negative retention", []string{"--cache-retention", "-1"}},
		{"unknown log format", []string{"--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(tt.args); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestGetPanicsBeforeLoad(t *testing.T) {
	saved := globalCfg
	globalCfg = nil
	defer func() { globalCfg = saved }()

	defer func() {
		if recover() == nil {
			t.Error("Expected Get to panic before Load")
		}
	}()
	Get()
}
