package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "go-tours", cfg.MongoDB)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 90, cfg.JWTCookieDays)
	assert.Equal(t, 10*time.Minute, cfg.ResetTokenTTL)
	assert.False(t, cfg.Production())
}

func TestLoad_EnvOverlayBeatsDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "3000")
	t.Setenv("JWT_EXPIRES_IN", "24h")
	t.Setenv("JWT_COOKIE_DAYS", "7")
	t.Setenv("RESET_TOKEN_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 7, cfg.JWTCookieDays)
	assert.Equal(t, 5*time.Minute, cfg.ResetTokenTTL)
	assert.True(t, cfg.Production())
}

func TestLoad_BadOverlayKeepsDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_COOKIE_DAYS", "not-a-number")
	t.Setenv("JWT_EXPIRES_IN", "ninety-days")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.JWTCookieDays)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
}
