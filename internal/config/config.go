// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds all service settings, populated from environment variables.
// The target list is deliberately not configurable here; it is static input
// owned by the domain package.
type Config struct {
	ProjectID string
	DatasetID string
	TableID   string

	// CronSchedule is the run cadence in cron syntax. The default matches the
	// feed's update rhythm: midnight and noon UTC.
	CronSchedule string
	RunOnStart   bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	FetchTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. PROJECT_ID is the only required setting.
func Load() (*Config, error) {
	fetchTimeout, err := envDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectID:       os.Getenv("PROJECT_ID"),
		DatasetID:       envOrDefault("DATASET_ID", "weather_dw"),
		TableID:         envOrDefault("TABLE_ID", "daily"),
		CronSchedule:    envOrDefault("CRON_SCHEDULE", "0 0,12 * * *"),
		RunOnStart:      os.Getenv("RUN_ON_START") == "true",
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		FetchTimeout:    fetchTimeout,
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.ProjectID == "" {
		return nil, errors.New("PROJECT_ID is required")
	}
	if cfg.DatasetID == "" {
		return nil, errors.New("DATASET_ID must not be empty")
	}
	if cfg.TableID == "" {
		return nil, errors.New("TABLE_ID must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key, def string) (time.Duration, error) {
	v := envOrDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}
