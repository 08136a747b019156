package fetcher

import (
	"fmt"
	"time"
)

// Config holds the configuration for sanctions list downloads.
type Config struct {
	// Timeout is the maximum duration of a single HTTP request, body included.
	// The SDN document is tens of megabytes, so this is far above a typical API timeout.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxAttempts is the total number of attempts per download.
	// Only network timeouts, connection resets, 408, 429, and 5xx are retried.
	// Default: 1 (no retry)
	MaxAttempts int `yaml:"max_attempts"`

	// MaxBodySize is the maximum response body size in bytes.
	// A larger body is treated as a failed download.
	// Default: 268435456 (256MB)
	MaxBodySize int64 `yaml:"max_body_size"`

	// UserAgent is sent with every request. Empty keeps the Go default.
	// Default: "sanctions-sync/1.0"
	UserAgent string `yaml:"user_agent"`
}

// DefaultConfig returns the default download configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     60 * time.Second,
		MaxAttempts: 1,
		MaxBodySize: 256 * 1024 * 1024,
		UserAgent:   "sanctions-sync/1.0",
	}
}

// Validate checks the configuration values.
//
// Validation rules:
//   - Timeout: > 0
//   - MaxAttempts: 1-10
//   - MaxBodySize: 1KB-1GB
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		return fmt.Errorf("max attempts must be between 1 and 10, got %d", c.MaxAttempts)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(1024 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	return nil
}
