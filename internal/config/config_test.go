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
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "auth:\n  allow_guests: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.Presence.MaxConnectionsPerUser)
	assert.Equal(t, 100, cfg.Calls.HistorySize)
	assert.Equal(t, 5*time.Minute, cfg.Calls.SweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.Calls.MaxAge)
	assert.Equal(t, 60, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "open", cfg.Membership.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Redis.LastSeenTTL)
	assert.Equal(t, 60*time.Second, cfg.PongWait())
}

func TestLoadFileEnvOverrides(t *testing.T) {
	t.Setenv("SIGNAL_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("SIGNAL_RATE_LIMIT_LIMIT", "10")
	t.Setenv("SIGNAL_CALLS_MAX_AGE", "10m")

	cfg, err := LoadFile(writeConfig(t, "port: 9000\nrate_limit:\n  limit: 30\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, 10*time.Minute, cfg.Calls.MaxAge)
}

func TestValidate(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "membership:\n  driver: postgres\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "auth.jwt_secret")
	assert.ErrorContains(t, err, "membership.dsn")

	_, err = LoadFile(writeConfig(t, "auth:\n  allow_guests: true\nmembership:\n  driver: ldap\n"))
	assert.ErrorContains(t, err, `unknown membership.driver "ldap"`)
}
