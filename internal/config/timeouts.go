package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Request  time.Duration // Timeout for a single API request
	Catalog  time.Duration // Timeout for downloading the relay catalog
	Shutdown time.Duration // Grace period for flushing progress output and metrics
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - HSMV_TIMEOUT_REQUEST (default: 30s)
//   - HSMV_TIMEOUT_CATALOG (default: 60s)
//   - HSMV_TIMEOUT_SHUTDOWN (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Request:  parseDuration("HSMV_TIMEOUT_REQUEST", 30*time.Second),
		Catalog:  parseDuration("HSMV_TIMEOUT_CATALOG", 60*time.Second),
		Shutdown: parseDuration("HSMV_TIMEOUT_SHUTDOWN", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
