package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURL(t *testing.T) {
	// migrate needs the database URL without the serve-only variables
	t.Setenv("DATABASE_URL", "postgres://localhost/hirewire")
	t.Setenv("AI_SERVICE_URL", "")

	dbURL, err := DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/hirewire", dbURL)

	t.Setenv("DATABASE_URL", "")
	_, err = DatabaseURL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AI_SERVICE_URL", "http://ai:9000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_MissingAIServiceURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hirewire")
	t.Setenv("AI_SERVICE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_SERVICE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hirewire")
	t.Setenv("AI_SERVICE_URL", "http://ai:9000")
	t.Setenv("PORT", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("UPLOADS_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hirewire")
	t.Setenv("AI_SERVICE_URL", "http://ai:9000")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_TIMEOUT_SECONDS", "30")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hirewire")
	t.Setenv("AI_SERVICE_URL", "http://ai:9000")
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PortOutOfRange(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hirewire")
	t.Setenv("AI_SERVICE_URL", "http://ai:9000")
	t.Setenv("PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}
