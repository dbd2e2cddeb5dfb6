// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration for the ingest service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string        // optional; empty disables the duplicate fast-path cache
	CronSecret  string        // bearer token guarding the external trigger endpoint
	HTTPTimeout time.Duration // per upstream board request
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	timeout := 15 * time.Second
	if s := os.Getenv("HTTP_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("HTTP_TIMEOUT must be a positive duration, got %q", s)
		}
		timeout = d
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:        port,
		DatabaseURL: dbURL,
		RedisURL:    os.Getenv("REDIS_URL"),
		CronSecret:  os.Getenv("CRON_SECRET"),
		HTTPTimeout: timeout,
	}, nil
}
