package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sim")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MAESTRO_HOURLY_RATE", "25.50")
	t.Setenv("PUBLIC_BASE_URL", "https://booking.example/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.CancelTokenSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "25.5", cfg.MaestroHourlyRate.String())
	assert.Equal(t, "https://booking.example", cfg.PublicBaseURL)
	assert.Equal(t, "Europe/Rome", cfg.Timezone.String())
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.False(t, cfg.TrustProxy)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestPort(t *testing.T) {
	t.Setenv("X_PORT", "70000")
	_, err := Port("X_PORT", "8080")
	assert.Error(t, err)

	t.Setenv("X_PORT", "")
	p, err := Port("X_PORT", "8080")
	require.NoError(t, err)
	assert.Equal(t, "8080", p)
}

func TestIntAndBool(t *testing.T) {
	t.Setenv("X_INT", "abc")
	_, err := Int("X_INT", 1)
	assert.Error(t, err)

	t.Setenv("X_BOOL", "false")
	assert.False(t, Bool("X_BOOL", true))
	t.Setenv("X_BOOL", "nope")
	assert.True(t, Bool("X_BOOL", true))
}
