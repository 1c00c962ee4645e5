// Package config loads the process-wide configuration once at startup.
// The resulting Config is read-only and handed to constructors.
package config

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvProduction = "production"

	// fallbackKeySize is the length of the random HMAC key used when JWT_KEY is unset.
	fallbackKeySize = 32
)

// Config holds all application configuration.
type Config struct {
	Env      string         `mapstructure:"APP_ENV" validate:"required"`
	Port     string         `mapstructure:"APP_PORT" validate:"required"`
	Log      LogConfig      `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	JWT      JWTConfig      `mapstructure:",squash"`
	RabbitMQ RabbitMQConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
}

type LogConfig struct {
	Level  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json text"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"DATABASE_DRIVER" validate:"required,oneof=sqlite postgres"`
	DSN    string `mapstructure:"DATABASE_DSN" validate:"required"`
}

// JWTConfig contains the token signing settings.
// Key is never empty after Load; EphemeralKey reports whether it was generated.
type JWTConfig struct {
	Key          string `mapstructure:"JWT_KEY"`
	Issuer       string `mapstructure:"JWT_ISSUER"`
	Audience     string `mapstructure:"JWT_AUDIENCE"`
	EphemeralKey bool   `mapstructure:"-"`
}

// RabbitMQConfig is optional; an empty URL disables domain events.
type RabbitMQConfig struct {
	URL string `mapstructure:"RABBITMQ_URL" validate:"omitempty,url"`
}

// RedisConfig is optional; an empty Addr disables login throttling.
type RedisConfig struct {
	Addr            string        `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	Password        string        `mapstructure:"REDIS_PASSWORD"`
	LoginRateLimit  int           `mapstructure:"LOGIN_RATE_LIMIT" validate:"gt=0"`
	LoginRateWindow time.Duration `mapstructure:"LOGIN_RATE_WINDOW" validate:"gt=0"`
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:taskboard.db?_foreign_keys=on")
	v.SetDefault("JWT_KEY", "")
	v.SetDefault("JWT_ISSUER", "taskboard")
	v.SetDefault("JWT_AUDIENCE", "taskboard-clients")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
}

// Load reads configuration from v. Environment variables take precedence
// over the optional file named by CONFIG_FILE.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.JWT.Key == "" {
		if cfg.Env == EnvProduction {
			return Config{}, fmt.Errorf("JWT_KEY is required when APP_ENV=%s", EnvProduction)
		}
		key, err := randomKey(fallbackKeySize)
		if err != nil {
			return Config{}, fmt.Errorf("failed to generate fallback JWT key: %w", err)
		}
		cfg.JWT.Key = key
		cfg.JWT.EphemeralKey = true
	}

	return cfg, nil
}

func randomKey(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
