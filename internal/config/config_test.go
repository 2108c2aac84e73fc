package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "JWT_SECRET", "APP_ENV", "NODE_ENV", "DATABASE_PATH",
		"SOCIAL_SERVER_ADDR", "SOCIAL_SERVER_ENV", "SOCIAL_SERVER_CORSORIGINS",
		"SOCIAL_AUTH_JWTSECRET", "SOCIAL_AUTH_TOKENTTL", "SOCIAL_DATABASE_PATH",
		"SOCIAL_STORAGE_BUCKET", "SOCIAL_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultAddr, cfg.Server.Addr)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "data/social.db", cfg.Database.Path)
	assert.Equal(t, 15*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.Storage.Bucket)

	assert.Error(t, cfg.Validate(), "missing secret")
}

func TestLoad_LegacyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "shh")
	t.Setenv("NODE_ENV", "development")
	t.Setenv("DATABASE_PATH", "/tmp/app.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, "shh", cfg.Auth.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "/tmp/app.db", cfg.Database.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SOCIAL_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("SOCIAL_AUTH_JWTSECRET", "prefixed")
	t.Setenv("SOCIAL_AUTH_TOKENTTL", "1h")
	t.Setenv("SOCIAL_SERVER_CORSORIGINS", "http://localhost:3000, https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "prefixed", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Auth.JWTSecret = "  "
	cfg.Auth.TokenTTL = time.Hour
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Auth.TokenTTL = 0
	assert.Error(t, cfg.Validate())
}
