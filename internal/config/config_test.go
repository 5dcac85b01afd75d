package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9000
  read_timeout: 5s
store:
  driver: postgres
jwt:
  secret: file-secret
  expiry_hours: 2
cors:
  allowed_origins:
    - http://localhost:3000
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: file-secret
`)
	t.Setenv("DENTAL_SERVER_PORT", "9090")
	t.Setenv("DENTAL_JWT_SECRET", "env-secret")
	t.Setenv("DENTAL_RATE_LIMIT_BURST", "3")
	t.Setenv("DENTAL_REMINDER_LEAD_DAYS", "2")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, 2, cfg.Reminder.LeadDays)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("DENTAL_JWT_SECRET", "s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodySize)
	assert.True(t, cfg.Store.Seed)
}

func TestValidate(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  port: 1\n"))
		assert.ErrorContains(t, err, "jwt.secret")
	})

	t.Run("bad driver", func(t *testing.T) {
		_, err := Load(writeConfig(t, "store:\n  driver: mongo\njwt:\n  secret: s\n"))
		assert.ErrorContains(t, err, "unsupported store driver")
	})

	t.Run("minio without endpoint", func(t *testing.T) {
		_, err := Load(writeConfig(t, "minio:\n  enabled: true\njwt:\n  secret: s\n"))
		assert.ErrorContains(t, err, "minio.endpoint")
	})
}
