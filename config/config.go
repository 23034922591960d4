// Package config loads gateway configuration from the environment.
// A local .env file is honored in development via godotenv.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the gateway.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Backend   BackendConfig
	Session   SessionConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

// BackendConfig points at the external API that owns credentials, roles
// and profile data.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	Timeout             time.Duration
	ReadinessDrainDelay time.Duration
}

// Load reads configuration from the environment, applying defaults for
// everything except the values Validate flags as required.
func Load() *Config {
	// Best-effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "web-gateway"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Backend: BackendConfig{
			URL:     getEnv("BACKEND_API_URL", ""),
			Timeout: getDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", ""),
			TTL:          getDuration("SESSION_TTL", 60*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "gateway_session"),
			CookieSecure: getBool("SESSION_COOKIE_SECURE", true),
		},
		Tracing: TracingConfig{
			Enabled:    getBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			Timeout:             getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			ReadinessDrainDelay: getDuration("READINESS_DRAIN_DELAY", 5*time.Second),
		},
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("BACKEND_API_URL is required")
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("BACKEND_TIMEOUT must be positive")
	}
	return nil
}

// GetShutdownTimeoutDuration returns the HTTP server shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return c.Shutdown.Timeout
}

// GetReadinessDrainDelayDuration returns how long /ready fails before the
// HTTP server starts shutting down.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return c.Shutdown.ReadinessDrainDelay
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
