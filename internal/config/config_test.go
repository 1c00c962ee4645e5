package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_KEY", "")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "taskboard", cfg.JWT.Issuer)
	assert.Equal(t, "taskboard-clients", cfg.JWT.Audience)
	assert.Equal(t, 10, cfg.Redis.LoginRateLimit)
	assert.Equal(t, time.Minute, cfg.Redis.LoginRateWindow)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoad_FallbackKeyWhenUnset(t *testing.T) {
	t.Setenv("JWT_KEY", "")

	first, err := config.Load(viper.New())
	require.NoError(t, err)
	second, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.True(t, first.JWT.EphemeralKey)
	assert.Len(t, first.JWT.Key, 32)
	assert.NotEqual(t, first.JWT.Key, second.JWT.Key, "each process start gets a fresh key")
}

func TestLoad_FallbackKeyRefusedInProduction(t *testing.T) {
	t.Setenv("JWT_KEY", "")
	t.Setenv("APP_ENV", config.EnvProduction)

	_, err := config.Load(viper.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_KEY is required")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_KEY", "configured-secret")
	t.Setenv("JWT_ISSUER", "issuer-x")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=localhost user=postgres dbname=taskboard")
	t.Setenv("LOGIN_RATE_WINDOW", "30s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.False(t, cfg.JWT.EphemeralKey)
	assert.Equal(t, "configured-secret", cfg.JWT.Key)
	assert.Equal(t, "issuer-x", cfg.JWT.Issuer)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Redis.LoginRateWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := config.Load(viper.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9090\"\nJWT_AUDIENCE: file-audience\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_KEY", "k")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "file-audience", cfg.JWT.Audience)
}
