package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"JWT_SECRET", "STRIPE_SECRET", "STRIPE_PUBLISHABLE", "STRIPE_LINK_BASIC", "STRIPE_LINK_PRO", "PING_MESSAGE", "PORT",
		"NOTESAAS_JWT_SECRET", "NOTESAAS_SERVER_PORT", "NOTESAAS_APP_ENVIRONMENT", "NOTESAAS_LOG_LEVEL",
		"NOTESAAS_STRIPE_SECRET_KEY", "NOTESAAS_REDIS_ADDR", "NOTESAAS_SEED_ENABLED",
	} {
		if val, ok := os.LookupEnv(name); ok {
			os.Unsetenv(name)
			t.Cleanup(func() { os.Setenv(name, val) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "notesaas", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "ping", cfg.App.PingMessage)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "password", cfg.Auth.DefaultInvitePassword)
	assert.Equal(t, 10, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.Seed.Enabled)
	assert.False(t, cfg.StripeEnabled())

	// no secret configured: a random one is generated
	assert.True(t, cfg.JWT.SecretGenerated)
	assert.Len(t, cfg.JWT.Secret, 32)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTESAAS_SERVER_PORT", "9090")
	t.Setenv("NOTESAAS_JWT_SECRET", "s3cret")
	t.Setenv("NOTESAAS_SEED_ENABLED", "false")
	t.Setenv("NOTESAAS_REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.False(t, cfg.JWT.SecretGenerated)
	assert.False(t, cfg.Seed.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("STRIPE_SECRET", "sk_test_1")
	t.Setenv("STRIPE_PUBLISHABLE", "pk_test_1")
	t.Setenv("PING_MESSAGE", "pong")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.JWT.Secret)
	assert.True(t, cfg.StripeEnabled())
	assert.Equal(t, "pk_test_1", cfg.Stripe.PublishableKey)
	assert.Equal(t, "pong", cfg.App.PingMessage)

	// prefixed name wins
	t.Setenv("NOTESAAS_JWT_SECRET", "prefixed")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.JWT.Secret)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "notesaas.toml")
	content := `
[app]
name = "notes-test"

[server]
port = 7070

[auth]
max_login_attempts = 3
login_window = "1m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "notes-test", cfg.App.Name)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, time.Minute, cfg.Auth.LoginWindow)

	// env beats file
	t.Setenv("NOTESAAS_SERVER_PORT", "6060")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero ttl", func(c *Config) { c.JWT.TTL = 0 }},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 1 }},
		{"no invite password", func(c *Config) { c.Auth.DefaultInvitePassword = "" }},
		{"throttle without window", func(c *Config) { c.Auth.LoginWindow = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"generated secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.SecretGenerated = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
