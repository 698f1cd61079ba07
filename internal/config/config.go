package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/random"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const EnvPrefix = "NOTESAAS"

// Config holds all application configuration
type Config struct {
	App    AppConfig
	Server ServerConfig
	JWT    JWTConfig
	Auth   AuthConfig
	Redis  RedisConfig
	Stripe StripeConfig
	Seed   SeedConfig
	Jobs   JobsConfig
	Log    LogConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	PingMessage string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	// SecretGenerated is set when no secret was configured and a random one was made up.
	SecretGenerated bool
}

type AuthConfig struct {
	DefaultInvitePassword string
	BcryptCost            int
	MaxLoginAttempts      int
	LoginWindow           time.Duration
}

// RedisConfig holds Redis connection settings. An empty Addr selects the in-memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	LinkBasic      string
	LinkPro        string
}

type SeedConfig struct {
	Enabled bool
}

type JobsConfig struct {
	CacheSweepInterval time.Duration
	StatsInterval      time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. Environment variables use
// the NOTESAAS_ prefix with dots replaced by underscores (NOTESAAS_SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	cfg := &Config{}
	bindConfig(v, cfg)

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = random.String(32)
		cfg.JWT.SecretGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "notesaas")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.ping_message", "ping")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})

	// JWT defaults
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "notesaas")
	v.SetDefault("jwt.ttl", "168h") // 7 days

	// Auth defaults
	v.SetDefault("auth.default_invite_password", "password")
	v.SetDefault("auth.bcrypt_cost", 8)
	v.SetDefault("auth.max_login_attempts", 10)
	v.SetDefault("auth.login_window", "15m")

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Stripe defaults
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.publishable_key", "")
	v.SetDefault("stripe.link_basic", "")
	v.SetDefault("stripe.link_pro", "")

	v.SetDefault("seed.enabled", true)

	v.SetDefault("jobs.cache_sweep_interval", "1m")
	v.SetDefault("jobs.stats_interval", "5m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// bindLegacyEnv accepts the unprefixed variable names older deployments use.
// The prefixed name wins when both are set.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"jwt.secret":             "JWT_SECRET",
		"stripe.secret_key":      "STRIPE_SECRET",
		"stripe.publishable_key": "STRIPE_PUBLISHABLE",
		"stripe.link_basic":      "STRIPE_LINK_BASIC",
		"stripe.link_pro":        "STRIPE_LINK_PRO",
		"app.ping_message":       "PING_MESSAGE",
		"server.port":            "PORT",
	}
	for key, env := range legacy {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return err
		}
	}
	return nil
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("app.name")
	cfg.App.Environment = v.GetString("app.environment")
	cfg.App.Version = v.GetString("app.version")
	cfg.App.PingMessage = v.GetString("app.ping_message")

	// Server
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = v.GetDuration("server.write_timeout")
	cfg.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	cfg.Server.CORSOrigins = v.GetStringSlice("server.cors_origins")

	// JWT
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.Issuer = v.GetString("jwt.issuer")
	cfg.JWT.TTL = v.GetDuration("jwt.ttl")

	// Auth
	cfg.Auth.DefaultInvitePassword = v.GetString("auth.default_invite_password")
	cfg.Auth.BcryptCost = v.GetInt("auth.bcrypt_cost")
	cfg.Auth.MaxLoginAttempts = v.GetInt("auth.max_login_attempts")
	cfg.Auth.LoginWindow = v.GetDuration("auth.login_window")

	// Redis
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")

	// Stripe
	cfg.Stripe.SecretKey = v.GetString("stripe.secret_key")
	cfg.Stripe.PublishableKey = v.GetString("stripe.publishable_key")
	cfg.Stripe.LinkBasic = v.GetString("stripe.link_basic")
	cfg.Stripe.LinkPro = v.GetString("stripe.link_pro")

	cfg.Seed.Enabled = v.GetBool("seed.enabled")

	cfg.Jobs.CacheSweepInterval = v.GetDuration("jobs.cache_sweep_interval")
	cfg.Jobs.StatsInterval = v.GetDuration("jobs.stats_interval")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Development = v.GetBool("log.development")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %s", c.JWT.TTL)
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}

	if c.Auth.DefaultInvitePassword == "" {
		return errors.New("default invite password is required")
	}

	if c.Auth.MaxLoginAttempts > 0 && c.Auth.LoginWindow <= 0 {
		return errors.New("login window must be positive when login throttling is enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}

	if c.IsProduction() && c.JWT.SecretGenerated {
		return errors.New("jwt secret must be set in production")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// StripeEnabled reports whether a Stripe secret key is configured.
func (c *Config) StripeEnabled() bool {
	return c.Stripe.SecretKey != ""
}
