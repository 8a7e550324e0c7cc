package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.DBPath != "streakd.db" || cfg.UserID != "local" || cfg.RemotePrefix != "streakd" {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.TickInterval != time.Minute || cfg.SchedulerBuffer != 64 {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected no remote by default: %+v", cfg)
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("STREAKD_DB_PATH", "data/custom.db")
	t.Setenv("STREAKD_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("STREAKD_USER_ID", "ana")
	t.Setenv("STREAKD_TICK_SECONDS", "15")
	t.Setenv("STREAKD_SCHEDULER_BUFFER", "128")
	t.Setenv("STREAKD_DESKTOP_NOTIFICATIONS", "true")
	t.Setenv("STREAKD_TIMEZONE", "Europe/Lisbon")
	t.Setenv("STREAKD_METRICS_ADDR", "127.0.0.1:9464")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.DBPath != "data/custom.db" || cfg.RedisURL != "redis://localhost:6379/2" || cfg.UserID != "ana" {
		t.Fatalf("unexpected storage overrides: %+v", cfg)
	}
	if cfg.TickInterval != 15*time.Second || cfg.SchedulerBuffer != 128 {
		t.Fatalf("unexpected runtime overrides: %+v", cfg)
	}
	if !cfg.DesktopNotifications {
		t.Fatal("expected desktop notifications true from env")
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("unexpected metrics addr %q", cfg.MetricsAddr)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Europe/Lisbon" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestRuntimeConfigIgnoresBadNumbers(t *testing.T) {
	t.Setenv("STREAKD_TICK_SECONDS", "soon")
	t.Setenv("STREAKD_SCHEDULER_BUFFER", "-3")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.TickInterval != time.Minute || cfg.SchedulerBuffer != 64 {
		t.Fatalf("expected defaults to survive bad values: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STREAKD_USER_ID=from-file\nSTREAKD_REMOTE_PREFIX=already\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("STREAKD_USER_ID", "")
	os.Unsetenv("STREAKD_USER_ID")
	t.Setenv("STREAKD_REMOTE_PREFIX", "set")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("STREAKD_USER_ID"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("STREAKD_REMOTE_PREFIX"); got != "set" {
		t.Fatalf("existing variable was overridden: %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}
