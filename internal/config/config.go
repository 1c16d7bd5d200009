package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	Issuer      string `mapstructure:"issuer"`
	AllowGuests bool   `mapstructure:"allow_guests"`
}

type PresenceConfig struct {
	MaxConnectionsPerUser int `mapstructure:"max_connections_per_user"`
}

type CallsConfig struct {
	HistorySize   int           `mapstructure:"history_size"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxAge        time.Duration `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type MembershipConfig struct {
	// Driver is "postgres" or "open".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	LastSeenTTL time.Duration `mapstructure:"last_seen_ttl"`
}

type Config struct {
	Mode       string           `mapstructure:"mode"`
	Port       int              `mapstructure:"port"`
	LogLevel   string           `mapstructure:"log_level"`
	ReadLimit  int64            `mapstructure:"read_limit"`
	PingPeriod time.Duration    `mapstructure:"ping_period"`
	SendBuffer int              `mapstructure:"send_buffer"`
	Secret     string           `mapstructure:"secret"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Presence   PresenceConfig   `mapstructure:"presence"`
	Calls      CallsConfig      `mapstructure:"calls"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Membership MembershipConfig `mapstructure:"membership"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

// PongWait is how long a socket may stay silent before it is dropped.
func (c *Config) PongWait() time.Duration {
	return c.PingPeriod * 10 / 9
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" && !c.Auth.AllowGuests {
		errs = append(errs, errors.New("auth.jwt_secret is required unless auth.allow_guests is set"))
	}
	switch c.Membership.Driver {
	case "open":
	case "postgres":
		if c.Membership.DSN == "" {
			errs = append(errs, errors.New("membership.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown membership.driver %q", c.Membership.Driver))
	}
	if c.PingPeriod <= 0 {
		errs = append(errs, errors.New("ping_period must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads config/config.<CONFIG_ENV>.yaml, then applies SIGNAL_*
// environment overrides. A .env file in the working directory is loaded
// first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("SIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.allow_guests", false)
	v.SetDefault("presence.max_connections_per_user", 5)
	v.SetDefault("calls.history_size", 100)
	v.SetDefault("calls.sweep_interval", "5m")
	v.SetDefault("calls.max_age", "30m")
	v.SetDefault("rate_limit.limit", 60)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("membership.driver", "open")
	v.SetDefault("membership.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.last_seen_ttl", "168h")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("membership", cfg.Membership.Driver).Bool("redis", cfg.Redis.Addr != "").Msg("config ready")
	return &cfg, nil
}
