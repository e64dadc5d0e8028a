package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validateIdentifier ensures an identifier contains only safe characters for SQL.
// Returns an error if the identifier contains characters that could be used for SQL injection.
func validateIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%s must start with a letter and contain only letters, numbers, and underscores (got: %s)", fieldName, name)
	}
	return nil
}

// validateConfig validates all configuration values to prevent SQL injection.
func validateConfig(config *Config) error {
	if err := validateIdentifier(config.TenantsTable, "TenantsTable"); err != nil {
		return err
	}
	if err := validateIdentifier(config.LedgerTable, "LedgerTable"); err != nil {
		return err
	}
	return nil
}

// Config configures bootstrap generation for the engine's control tables.
type Config struct {
	// OutputFolder is the directory where the migration file will be written
	OutputFolder string

	// OutputFilename is the name of the migration file
	OutputFilename string

	// TenantsTable is the name of the tenants table
	TenantsTable string

	// LedgerTable is the name of the migration ledger table
	LedgerTable string
}

// DefaultConfig returns the default configuration for control-table bootstrap.
func DefaultConfig() Config {
	timestamp := time.Now().Format("20060102150405")
	return Config{
		OutputFolder:   "migrations",
		OutputFilename: fmt.Sprintf("%s_init_tenant_control_tables.sql", timestamp),
		TenantsTable:   "tenants",
		LedgerTable:    "tenant_migrations",
	}
}

func writeMigration(config *Config, sql string) error {
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := os.WriteFile(outputPath, []byte(sql), 0o600); err != nil {
		return fmt.Errorf("failed to write migration file: %w", err)
	}

	return nil
}

// GeneratePostgres generates a PostgreSQL bootstrap migration file.
func GeneratePostgres(config *Config) error {
	// Validate configuration to prevent SQL injection
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return writeMigration(config, generatePostgresSQL(config))
}

func generatePostgresSQL(config *Config) string {
	return fmt.Sprintf(`-- Tenant Control Tables Migration
-- Generated: %s
-- Database: PostgreSQL

-- Tenants table maps each customer account to its own schema
-- Subdomain uniqueness is case-insensitive because schema names derive from it
CREATE TABLE IF NOT EXISTS %s (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    subdomain TEXT NOT NULL,
    schema_name TEXT NOT NULL,
    plan TEXT NOT NULL DEFAULT 'standard',
    status TEXT NOT NULL DEFAULT 'trial' CHECK (status IN ('trial', 'active', 'suspended', 'expired')),
    active BOOLEAN NOT NULL DEFAULT TRUE,
    contact_email TEXT NOT NULL,
    contact_phone TEXT,
    trial_ends_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_subdomain
    ON %s (LOWER(subdomain));

CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_schema
    ON %s (schema_name);

-- Index for fleet enumeration of active tenants
CREATE INDEX IF NOT EXISTS idx_%s_active
    ON %s (active) WHERE active;

-- Migration ledger records which versions have executed per tenant
-- The unique index enforces the at-most-once invariant physically
CREATE TABLE IF NOT EXISTS %s (
    tenant_id UUID NOT NULL REFERENCES %s(id),
    migration_version TEXT NOT NULL,
    executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_tenant_version
    ON %s (tenant_id, migration_version);

-- Index for finding the most recently executed migration per tenant
CREATE INDEX IF NOT EXISTS idx_%s_executed
    ON %s (tenant_id, executed_at DESC);
`,
		time.Now().Format(time.RFC3339),
		config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.LedgerTable, config.TenantsTable,
		config.LedgerTable, config.LedgerTable,
		config.LedgerTable, config.LedgerTable,
	)
}

// GenerateMySQL generates a MySQL/MariaDB bootstrap migration file.
// MySQL has no sub-database schemas; tenant isolation uses one database per
// tenant instead, so only the control tables are created here.
func GenerateMySQL(config *Config) error {
	// Validate configuration to prevent SQL injection
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return writeMigration(config, generateMySQLSQL(config))
}

func generateMySQLSQL(config *Config) string {
	return fmt.Sprintf(`-- Tenant Control Tables Migration
-- Generated: %s
-- Database: MySQL/MariaDB

-- Tenants table maps each customer account to its own database
-- Subdomain uniqueness is case-insensitive because database names derive from it
CREATE TABLE IF NOT EXISTS %s (
    id CHAR(36) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    subdomain VARCHAR(63) NOT NULL,
    schema_name VARCHAR(64) NOT NULL,
    plan VARCHAR(64) NOT NULL DEFAULT 'standard',
    status ENUM('trial', 'active', 'suspended', 'expired') NOT NULL DEFAULT 'trial',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    contact_email VARCHAR(255) NOT NULL,
    contact_phone VARCHAR(64),
    trial_ends_at TIMESTAMP(6) NULL,
    created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),

    UNIQUE KEY idx_%s_subdomain (subdomain),
    UNIQUE KEY idx_%s_schema (schema_name),
    KEY idx_%s_active (active)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

-- Migration ledger records which versions have executed per tenant
-- The unique key enforces the at-most-once invariant physically
CREATE TABLE IF NOT EXISTS %s (
    tenant_id CHAR(36) NOT NULL,
    migration_version VARCHAR(128) NOT NULL,
    executed_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),

    UNIQUE KEY idx_%s_tenant_version (tenant_id, migration_version),
    KEY idx_%s_executed (tenant_id, executed_at DESC),
    CONSTRAINT fk_%s_tenant FOREIGN KEY (tenant_id) REFERENCES %s(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
		time.Now().Format(time.RFC3339),
		config.TenantsTable,
		config.TenantsTable, config.TenantsTable, config.TenantsTable,
		config.LedgerTable,
		config.LedgerTable, config.LedgerTable,
		config.LedgerTable, config.TenantsTable,
	)
}

// GenerateSQLite generates a SQLite bootstrap migration file.
// SQLite has no schemas; tenant isolation uses table name prefixes instead.
func GenerateSQLite(config *Config) error {
	// Validate configuration to prevent SQL injection
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return writeMigration(config, generateSQLiteSQL(config))
}

func generateSQLiteSQL(config *Config) string {
	return fmt.Sprintf(`-- Tenant Control Tables Migration
-- Generated: %s
-- Database: SQLite

-- Tenants table maps each customer account to its own table-name prefix
CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    subdomain TEXT NOT NULL,
    schema_name TEXT NOT NULL,
    plan TEXT NOT NULL DEFAULT 'standard',
    status TEXT NOT NULL DEFAULT 'trial' CHECK (status IN ('trial', 'active', 'suspended', 'expired')),
    active INTEGER NOT NULL DEFAULT 1,
    contact_email TEXT NOT NULL,
    contact_phone TEXT,
    trial_ends_at TEXT,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_subdomain
    ON %s (LOWER(subdomain));

CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_schema
    ON %s (schema_name);

-- Migration ledger records which versions have executed per tenant
-- The unique index enforces the at-most-once invariant physically
CREATE TABLE IF NOT EXISTS %s (
    tenant_id TEXT NOT NULL REFERENCES %s(id),
    migration_version TEXT NOT NULL,
    executed_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_tenant_version
    ON %s (tenant_id, migration_version);

CREATE INDEX IF NOT EXISTS idx_%s_executed
    ON %s (tenant_id, executed_at DESC);
`,
		time.Now().Format(time.RFC3339),
		config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.LedgerTable, config.TenantsTable,
		config.LedgerTable, config.LedgerTable,
		config.LedgerTable, config.LedgerTable,
	)
}
