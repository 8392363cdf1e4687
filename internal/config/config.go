// Package config builds the application configuration from environment
// variables. The Config value is constructed once per command invocation and
// passed down explicitly; nothing in this package caches state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default values applied when the corresponding environment variable is unset.
const (
	DefaultAppName    = "Calculator WebApp"
	DefaultEnv        = "development"
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 8000
	DefaultWindowDays = 30
)

// Config holds all settings for both the calculator service and the metrics
// collector. It is immutable after FromEnv returns.
type Config struct {
	// AppName is the human-readable service name (APP_NAME).
	AppName string

	// Env is the deployment environment tag, e.g. "development" or
	// "production" (ENV).
	Env string

	// Debug enables request logging on the HTTP server (DEBUG).
	Debug bool

	// Host and Port are the calculator service listen address (HOST, PORT).
	Host string
	Port int

	// GitHubToken is the bearer token forwarded to the GitHub API
	// (GITHUB_TOKEN).
	GitHubToken string

	// GitHubRepository is the "owner/name" slug the collector reads from
	// (GITHUB_REPOSITORY).
	GitHubRepository string

	// MetricsWindowDays is the trailing window, in days, over which records
	// are included in the metrics report (METRICS_WINDOW_DAYS).
	MetricsWindowDays int
}

// FromEnv reads the environment and returns a fully populated Config.
// Unset variables fall back to defaults; unparsable numeric values are errors.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:           getenv("APP_NAME", DefaultAppName),
		Env:               getenv("ENV", DefaultEnv),
		Host:              getenv("HOST", DefaultHost),
		Port:              DefaultPort,
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		GitHubRepository:  os.Getenv("GITHUB_REPOSITORY"),
		MetricsWindowDays: DefaultWindowDays,
	}

	cfg.Debug = strings.EqualFold(os.Getenv("DEBUG"), "true")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT %d is out of range [1, 65535]", cfg.Port)
	}

	if v := os.Getenv("METRICS_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse METRICS_WINDOW_DAYS %q: %w", v, err)
		}
		cfg.MetricsWindowDays = days
	}
	if cfg.MetricsWindowDays <= 0 {
		return Config{}, fmt.Errorf("config: METRICS_WINDOW_DAYS must be positive, got %d", cfg.MetricsWindowDays)
	}

	return cfg, nil
}

// Addr returns the host:port listen address for the calculator service.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
