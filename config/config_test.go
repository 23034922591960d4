package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_API_URL", "https://api.example.com")
	t.Setenv("SESSION_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "web-gateway", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "gateway_session", cfg.Session.CookieName)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("SESSION_COOKIE_SECURE", "false")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.False(t, cfg.Session.CookieSecure)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRate)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "sixty hours")
	t.Setenv("SESSION_COOKIE_SECURE", "yes please")

	cfg := Load()
	assert.Equal(t, 60*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestValidate(t *testing.T) {
	setRequired(t)

	t.Run("missing backend url", func(t *testing.T) {
		t.Setenv("BACKEND_API_URL", "")
		err := Load().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BACKEND_API_URL")
	})

	t.Run("missing session secret", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")
		err := Load().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_SECRET")
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Load().Validate())
	})
}
