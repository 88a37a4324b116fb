package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.Warnings, "JWT_SECRET not set, using development secret")
	assert.False(t, cfg.S3Enabled())
	assert.Equal(t, *cfg, AppConfig)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("S3_BUCKET", "docs")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.NotContains(t, cfg.Warnings, "JWT_SECRET not set, using development secret")
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DSN(), "port=6543")
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
}
