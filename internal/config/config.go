package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RuntimeConfig struct {
	DBPath               string
	RedisURL             string
	UserID               string
	RemotePrefix         string
	TickInterval         time.Duration
	SchedulerBuffer      int
	DesktopNotifications bool
	Timezone             string
	LogFile              string
	// MetricsAddr, when set, serves Prometheus metrics while the TUI runs.
	MetricsAddr          string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:               "streakd.db",
		UserID:               "local",
		RemotePrefix:         "streakd",
		TickInterval:         time.Minute,
		SchedulerBuffer:      64,
		DesktopNotifications: false,
	}
}

// LoadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("STREAKD_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("STREAKD_REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := getEnvString("STREAKD_USER_ID"); ok {
		cfg.UserID = v
	}
	if v, ok := getEnvString("STREAKD_REMOTE_PREFIX"); ok {
		cfg.RemotePrefix = v
	}
	if v, ok := getEnvInt("STREAKD_TICK_SECONDS"); ok && v > 0 {
		cfg.TickInterval = time.Duration(v) * time.Second
	}
	if v, ok := getEnvInt("STREAKD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("STREAKD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("STREAKD_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("STREAKD_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("STREAKD_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	return cfg
}

// Location resolves Timezone, falling back to the system zone.
func (c RuntimeConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
