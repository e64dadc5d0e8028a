package config

import (
	"fmt"
	"time"
)

// Config is the runtime configuration for the schemafleet CLI.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Migration MigrationConfig `mapstructure:"migration"`
	Provision ProvisionConfig `mapstructure:"provision"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	// URL is a lib/pq connection string or DSN.
	URL string `mapstructure:"url"`

	// MaxOpenConns bounds the connection pool.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns bounds idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Development enables human-readable console output.
	Development bool `mapstructure:"development"`
}

// MigrationConfig configures migration execution.
type MigrationConfig struct {
	// StatementTimeout bounds each migration action.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`

	// FleetWorkers bounds how many tenants migrate concurrently during a sweep.
	FleetWorkers int `mapstructure:"fleet_workers"`
}

// ProvisionConfig configures tenant provisioning.
type ProvisionConfig struct {
	// TrialPeriod is how long new tenants stay in trial.
	TrialPeriod time.Duration `mapstructure:"trial_period"`

	// DefaultPlan is used when no plan is given.
	DefaultPlan string `mapstructure:"default_plan"`

	// CacheTTL is how long resolved tenants stay cached.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Migration: MigrationConfig{
			StatementTimeout: 5 * time.Minute,
			FleetWorkers:     1,
		},
		Provision: ProvisionConfig{
			TrialPeriod: 30 * 24 * time.Hour,
			DefaultPlan: "standard",
			CacheTTL:    30 * time.Second,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (or set DATABASE_URL)")
	}
	if c.Migration.FleetWorkers < 1 {
		return fmt.Errorf("migration.fleet_workers must be at least 1")
	}
	if c.Migration.StatementTimeout <= 0 {
		return fmt.Errorf("migration.statement_timeout must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
