package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUPABASE_DB_URL", "postgres://localhost/chayo")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("VIBECARD_TIMEOUT", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://localhost/chayo", cfg.DatabaseURL)
	assert.Equal(t, 20*time.Second, cfg.VibeCardTimeout)
	assert.Equal(t, "onboarding-events", cfg.RedisChannel)
	assert.Empty(t, cfg.RedisAddr)
}

func TestDurationParsing(t *testing.T) {
	t.Setenv("VIBECARD_TIMEOUT", "5s")
	assert.Equal(t, 5*time.Second, duration("VIBECARD_TIMEOUT", time.Minute))

	t.Setenv("VIBECARD_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, duration("VIBECARD_TIMEOUT", time.Minute))

	t.Setenv("VIBECARD_TIMEOUT", "-1s")
	assert.Equal(t, time.Minute, duration("VIBECARD_TIMEOUT", time.Minute))
}
