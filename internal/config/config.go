// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olgasafonova/volcano-mcp-server/internal/base"
	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
)

// Environment variable names
const (
	EnvWFSURL     = "VOLCANO_WFS_URL"
	EnvTimeout    = "VOLCANO_TIMEOUT"
	EnvMaxRetries = "VOLCANO_MAX_RETRIES"
	EnvUserAgent  = "VOLCANO_USER_AGENT"
	EnvCacheTTL   = "VOLCANO_CACHE_TTL"
	EnvRateLimit  = "VOLCANO_RATE_LIMIT"
	EnvLogLevel   = "VOLCANO_LOG_LEVEL"
)

// Config holds feature service and runtime settings
type Config struct {
	// BaseURL is the WFS endpoint
	BaseURL string

	// Timeout for a single upstream request
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// UserAgent identifies the server to the feature service
	UserAgent string

	// CacheTTL for response bodies; 0 disables caching
	CacheTTL time.Duration

	// RateLimit is the sustained upstream request rate per second; 0 disables limiting
	RateLimit float64

	// LogLevel for the stderr logger
	LogLevel slog.Level
}

// Default returns the configuration used when no environment variables are set
func Default() *Config {
	return &Config{
		BaseURL:    wfs.DefaultBaseURL,
		Timeout:    base.DefaultTimeout,
		MaxRetries: base.DefaultMaxAttempts - 1,
		UserAgent:  base.DefaultUserAgent,
		CacheTTL:   wfs.DefaultCacheTTL,
		RateLimit:  base.DefaultRateLimit,
		LogLevel:   slog.LevelInfo,
	}
}

// LoadConfig loads configuration from environment variables.
// Unset variables keep their defaults; malformed values are an error.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvWFSURL); v != "" {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%s must be an absolute http(s) URL, got %q", EnvWFSURL, v)
		}
		cfg.BaseURL = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration, got %q", EnvTimeout, v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer, got %q", EnvMaxRetries, v)
		}
		cfg.MaxRetries = n
	}

	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}

	if v := os.Getenv(EnvCacheTTL); v != "" {
		d, err := parseDurationOrZero(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%s must be a duration or 0, got %q", EnvCacheTTL, v)
		}
		cfg.CacheTTL = d
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number, got %q", EnvRateLimit, v)
		}
		cfg.RateLimit = r
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return nil, fmt.Errorf("%s must be debug, info, warn or error, got %q", EnvLogLevel, v)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// MaxAttempts returns the total number of attempts per upstream request
func (c *Config) MaxAttempts() int {
	return c.MaxRetries + 1
}

// parseDurationOrZero accepts a bare "0" in addition to Go duration syntax
func parseDurationOrZero(v string) (time.Duration, error) {
	if v == "0" {
		return 0, nil
	}
	return time.ParseDuration(v)
}
