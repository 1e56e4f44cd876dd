package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.GracefulShutdownTimeout)

	assert.False(t, cfg.EventBus.Enabled, "forwarding is opt-in")
	assert.Equal(t, "domain-events", cfg.EventBus.Queue)
	assert.Equal(t, 5*time.Second, cfg.EventBus.PublishTimeout)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	assert.Equal(t, "X-Tenant-Subdomain", cfg.Tenancy.SubdomainHeader)
	assert.Contains(t, cfg.Tenancy.ExcludedHosts, "localhost")
	assert.Contains(t, cfg.Tenancy.ExcludedHosts, ".local")
	assert.Contains(t, cfg.Tenancy.PublicPathPrefixes, "/health")
	assert.Contains(t, cfg.Tenancy.PublicPathPrefixes, "/api/v1/auth")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestLoad_EventBusRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/test")
	t.Setenv("EVENTBUS_ENABLED", "true")
	t.Setenv("EVENTBUS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eventbus.url")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateConfig_InvalidPort(t *testing.T) {
	cfg := &Config{
		Server:   Server{Port: 0},
		Database: Database{URL: "postgres://localhost/test"},
		EventBus: EventBus{PublishTimeout: time.Second},
	}

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateConfig_NonPositiveTimeout(t *testing.T) {
	cfg := &Config{
		Server:   Server{Port: 8080},
		Database: Database{URL: "postgres://localhost/test"},
		EventBus: EventBus{PublishTimeout: 0},
	}

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish_timeout")
}
