package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	var cfg Config
	err := load(context.Background(), &cfg, envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "content_platform", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Content.PinLimit)
	assert.Equal(t, 180, cfg.Content.PreviewLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5.0, cfg.Auth.Rate)
}

func TestLoad_Overrides(t *testing.T) {
	var cfg Config
	err := load(context.Background(), &cfg, envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"ENV":        "production",
		"PIN_LIMIT":  "5",
		"TOKEN_TTL":  "1h",
		"REDIS_DB":   "2",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5, cfg.Content.PinLimit)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_RequiresSecret(t *testing.T) {
	var cfg Config
	err := load(context.Background(), &cfg, envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestLoadClient_Defaults(t *testing.T) {
	var cfg Client
	require.NoError(t, load(context.Background(), &cfg, envconfig.MapLookuper(nil)))

	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Empty(t, cfg.CredentialsPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}
