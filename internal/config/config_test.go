package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "DEFAULT_MODEL", "PROVIDER_MAX_RETRIES", "RATE_LIMIT_PER_MINUTE", "TABLE_PREFIX", "ENABLE_LOREM"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.DefaultModel != "gemini-1.5-flash" {
		t.Errorf("DefaultModel = %q, want gemini-1.5-flash", cfg.DefaultModel)
	}
	if cfg.ProviderMaxRetry != 3 {
		t.Errorf("ProviderMaxRetry = %d, want 3", cfg.ProviderMaxRetry)
	}
	if cfg.RateLimitPerMinute != 10 || cfg.RateLimitPerHour != 100 {
		t.Errorf("rate limits = %d/%d, want 10/100", cfg.RateLimitPerMinute, cfg.RateLimitPerHour)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want dev_", cfg.TablePrefix)
	}
	if !cfg.EnableLorem {
		t.Error("EnableLorem should default to true in dev")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("PROVIDER_TIMEOUT", "45")
	t.Setenv("PROVIDER_MAX_RETRIES", "5")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("ENABLE_LOREM", "")

	cfg := Load()

	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q, want prod_", cfg.TablePrefix)
	}
	if cfg.ProviderTimeout != 45*time.Second {
		t.Errorf("ProviderTimeout = %s, want 45s", cfg.ProviderTimeout)
	}
	if cfg.ProviderMaxRetry != 5 {
		t.Errorf("ProviderMaxRetry = %d, want 5", cfg.ProviderMaxRetry)
	}
	if cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled should be false")
	}
	if cfg.EnableLorem {
		t.Error("EnableLorem should default to false in prod")
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"go duration", "1m30s", 90 * time.Second},
		{"plain seconds", "20", 20 * time.Second},
		{"garbage falls back", "soon", 7 * time.Second},
		{"empty falls back", "", 7 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", 7*time.Second); got != tt.want {
				t.Errorf("getEnvDuration() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"promptlab-2026-01-01T00-00-00.log",
		"promptlab-2026-01-02T00-00-00.log",
		"promptlab-2026-01-03T00-00-00.log",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := cleanupOldLogs(dir, 2); err != nil {
		t.Fatalf("cleanupOldLogs() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest log file should have been removed")
	}
	for _, name := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should be kept: %v", name, err)
		}
	}
}
