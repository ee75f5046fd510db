package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the client configuration.
type Config struct {
	APIBaseURL     string        // Remote ERP API origin
	RequestTimeout time.Duration // Per-request HTTP timeout
	RefreshBuffer  time.Duration // Proactive refresh window before token expiry
	StatePath      string        // Path of the persisted session record
	RequestsPerSec float64       // Client-side rate limit; 0 disables
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	config := &Config{
		APIBaseURL:     getEnv("ERP_API_URL", ""),
		RequestTimeout: 30 * time.Second,
		RefreshBuffer:  30 * time.Second,
		StatePath:      getEnv("ERP_STATE_PATH", defaultStatePath()),
	}

	if timeoutStr := os.Getenv("ERP_REQUEST_TIMEOUT"); timeoutStr != "" {
		duration, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ERP_REQUEST_TIMEOUT format: %w", err)
		}
		config.RequestTimeout = duration
	}

	if bufferStr := os.Getenv("ERP_REFRESH_BUFFER"); bufferStr != "" {
		duration, err := time.ParseDuration(bufferStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ERP_REFRESH_BUFFER format: %w", err)
		}
		config.RefreshBuffer = duration
	}

	if rpsStr := os.Getenv("ERP_RATE_LIMIT"); rpsStr != "" {
		rps, err := strconv.ParseFloat(rpsStr, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("invalid ERP_RATE_LIMIT value %q", rpsStr)
		}
		config.RequestsPerSec = rps
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("ERP_API_URL cannot be empty")
	}

	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("ERP_API_URL must be an http(s) origin")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("ERP_REQUEST_TIMEOUT must be positive")
	}

	if c.RefreshBuffer < 0 {
		return fmt.Errorf("ERP_REFRESH_BUFFER must not be negative")
	}

	if c.StatePath == "" {
		return fmt.Errorf("ERP_STATE_PATH cannot be empty")
	}

	return nil
}

// defaultStatePath places the session record under the user config dir,
// falling back to the working directory when none is known.
func defaultStatePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".erp-core/session.json"
	}
	return filepath.Join(base, "erp-core", "session.json")
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
