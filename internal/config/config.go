package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server                  Server        `mapstructure:"server"`
	Database                Database      `mapstructure:"database"`
	EventBus                EventBus      `mapstructure:"eventbus"`
	Logging                 Logging       `mapstructure:"logging"`
	Auth                    Auth          `mapstructure:"auth"`
	Metrics                 Metrics       `mapstructure:"metrics"`
	Tenancy                 Tenancy       `mapstructure:"tenancy"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Database struct {
	URL string `mapstructure:"url"`
}

// EventBus configures best-effort forwarding of domain events to the
// message broker. Disabled means events are only recorded locally.
type EventBus struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	Queue          string        `mapstructure:"queue"`
	Source         string        `mapstructure:"source"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Auth struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	RequireAuth bool          `mapstructure:"require_auth"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Tenancy configures subdomain resolution. ExcludedHosts are development
// hostnames that never yield a subdomain; PublicPathPrefixes bypass tenant
// resolution entirely.
type Tenancy struct {
	SubdomainHeader    string   `mapstructure:"subdomain_header"`
	ExcludedHosts      []string `mapstructure:"excluded_hosts"`
	PublicPathPrefixes []string `mapstructure:"public_path_prefixes"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("graceful_shutdown_timeout", "30s")

	// Registered empty so AutomaticEnv can bind DATABASE_URL / EVENTBUS_URL
	v.SetDefault("database.url", "")
	v.SetDefault("eventbus.url", "")

	// Event bus defaults: forwarding is opt-in, audit logging is not
	v.SetDefault("eventbus.enabled", false)
	v.SetDefault("eventbus.queue", "domain-events")
	v.SetDefault("eventbus.source", "multi-tenant-task-platform")
	v.SetDefault("eventbus.publish_timeout", "5s")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "your-256-bit-secret-key-for-development-only-change-in-production")
	v.SetDefault("auth.token_expiry", "24h")
	v.SetDefault("auth.require_auth", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Tenancy defaults
	v.SetDefault("tenancy.subdomain_header", "X-Tenant-Subdomain")
	v.SetDefault("tenancy.excluded_hosts", []string{"localhost", "127.0.0.1", ".local"})
	v.SetDefault("tenancy.public_path_prefixes", []string{
		"/health",
		"/api/v1/auth",
		"/api/internal",
		"/metrics",
		"/swagger",
	})

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if cfg.EventBus.Enabled && cfg.EventBus.URL == "" {
		return fmt.Errorf("eventbus.url is required when eventbus is enabled")
	}

	if cfg.EventBus.PublishTimeout <= 0 {
		return fmt.Errorf("eventbus.publish_timeout must be positive")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	return nil
}
