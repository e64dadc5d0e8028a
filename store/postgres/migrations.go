package postgres

import "fmt"

// TableConfig configures the control-table names used by the engine.
type TableConfig struct {
	// TenantsTable is the name of the table storing tenant records.
	TenantsTable string

	// LedgerTable is the name of the table storing the migration ledger.
	LedgerTable string
}

// DefaultTableConfig returns the default table configuration.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		TenantsTable: "tenants",
		LedgerTable:  "tenant_migrations",
	}
}

// MigrationUp returns the SQL to create the engine's control tables.
// It creates the tenants table with a unique index on the lowercased
// subdomain, and the ledger table with a unique index on
// (tenant_id, migration_version) so the at-most-once invariant is enforced
// physically, not just logically.
func MigrationUp(config TableConfig) string {
	return fmt.Sprintf(`-- Create tenants table
CREATE TABLE %s (
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

-- Subdomain uniqueness is case-insensitive; schema names derive from it
CREATE UNIQUE INDEX idx_%s_subdomain ON %s(LOWER(subdomain));
CREATE UNIQUE INDEX idx_%s_schema ON %s(schema_name);

-- Index for fleet enumeration of active tenants
CREATE INDEX idx_%s_active ON %s(active) WHERE active;

-- Create migration ledger table
CREATE TABLE %s (
    tenant_id UUID NOT NULL REFERENCES %s(id),
    migration_version TEXT NOT NULL,
    executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- At most one ledger entry per (tenant, version)
CREATE UNIQUE INDEX idx_%s_tenant_version ON %s(tenant_id, migration_version);

-- Index for finding the most recently executed migration per tenant
CREATE INDEX idx_%s_executed ON %s(tenant_id, executed_at DESC);
`,
		config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.TenantsTable, config.TenantsTable,
		config.LedgerTable, config.TenantsTable,
		config.LedgerTable, config.LedgerTable,
		config.LedgerTable, config.LedgerTable,
	)
}

// MigrationDown returns the SQL to drop the engine's control tables.
// It drops the ledger table first due to the foreign key constraint,
// then drops the tenants table. Tenant schemas themselves are not touched.
func MigrationDown(config TableConfig) string {
	return fmt.Sprintf(`-- Drop migration ledger table (must be dropped first due to foreign key)
DROP TABLE IF EXISTS %s;

-- Drop tenants table
DROP TABLE IF EXISTS %s;
`, config.LedgerTable, config.TenantsTable)
}
