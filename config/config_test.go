package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"API_BASE_URL", "API_TIMEOUT", "API_TOKEN", "PORT", "STORE", "CORS_ORIGINS", "LOG_LEVEL", "APP_ENV"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Empty(t, cfg.API.Token)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("API_TIMEOUT", "5")
	t.Setenv("API_TOKEN", "tok")
	t.Setenv("STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "tok", cfg.API.Token)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestFromEnv_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
}

func TestValidate(t *testing.T) {
	t.Run("relative base URL", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "/v1")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "")
		t.Setenv("STORE", "postgres")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "STORE")
	})
}
