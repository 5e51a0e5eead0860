// Package config provides configuration loading and validation for the API server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the HireWire API, read from
// environment variables. Load fails fast when a required variable is missing.
type Config struct {
	Port         int
	DatabaseURL  string
	AIServiceURL string
	RedisURL     string // optional; empty disables caching and event publishing
	AITimeout    time.Duration
	UploadsDir   string
}

// DatabaseURL returns the required DATABASE_URL on its own, for commands
// like migrate that never talk to the AI service.
func DatabaseURL() (string, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return dbURL, nil
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL, err := DatabaseURL()
	if err != nil {
		return nil, err
	}

	aiURL := os.Getenv("AI_SERVICE_URL")
	if aiURL == "" {
		return nil, fmt.Errorf("AI_SERVICE_URL is required")
	}

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		port = p
	}

	timeout := 60 * time.Second
	if timeoutStr := os.Getenv("AI_TIMEOUT_SECONDS"); timeoutStr != "" {
		secs, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_TIMEOUT_SECONDS: %v", err)
		}
		timeout = time.Duration(secs) * time.Second
	}

	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}

	cfg := &Config{
		Port:         port,
		DatabaseURL:  dbURL,
		AIServiceURL: aiURL,
		RedisURL:     os.Getenv("REDIS_URL"),
		AITimeout:    timeout,
		UploadsDir:   uploadsDir,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.AITimeout < time.Second {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be at least 1 second")
	}
	return nil
}
