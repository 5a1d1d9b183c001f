package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	KV        KVConfig        `yaml:"kv"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Line      LineConfig      `yaml:"line"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"1m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	URL      string `yaml:"url"       env:"BLUEPRINT_DB_URL" env-default:"organizer.db"`
	LogLevel string `yaml:"log_level" env:"DB_LOG_LEVEL"     env-default:"warn"`
}

// KVConfig selects the key-value store backend.
type KVConfig struct {
	Backend       string `yaml:"backend"        env:"KV_BACKEND"        env-default:"sqlite"`
	RedisAddr     string `yaml:"redis_addr"     env:"KV_REDIS_ADDR"     env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"KV_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"       env:"KV_REDIS_DB"       env-default:"0"`
}

// SchedulerConfig holds reminder scheduling policy.
type SchedulerConfig struct {
	Timezone     string        `yaml:"timezone"       env:"SCHEDULER_TIMEZONE"       env-default:"Local"`
	MinLead      time.Duration `yaml:"min_lead"       env:"SCHEDULER_MIN_LEAD"       env-default:"5s"`
	MinStartLead time.Duration `yaml:"min_start_lead" env:"SCHEDULER_MIN_START_LEAD" env-default:"10m"`
}

// LineConfig holds LINE Messaging API credentials. Delivery falls back to the
// log when the credentials are empty.
type LineConfig struct {
	ChannelSecret    string `yaml:"channel_secret"    env:"CHANNEL_SECRET"`
	ChannelToken     string `yaml:"channel_token"     env:"CHANNEL_ACCESS_TOKEN"`
	DefaultRecipient string `yaml:"default_recipient" env:"MY_USER_ID"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// Enabled reports whether LINE delivery is configured.
func (c LineConfig) Enabled() bool {
	return c.ChannelSecret != "" && c.ChannelToken != ""
}

// Location resolves the scheduler timezone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from ENV, optionally layered over the YAML file
// named by CONFIG_PATH.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.KV.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown kv backend %q", c.KV.Backend)
	}
	if c.Scheduler.MinLead < 0 || c.Scheduler.MinStartLead < 0 {
		return fmt.Errorf("scheduler lead times must not be negative")
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}
	if (c.Line.ChannelSecret == "") != (c.Line.ChannelToken == "") {
		return fmt.Errorf("CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set together")
	}
	return nil
}
