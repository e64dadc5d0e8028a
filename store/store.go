package store

import (
	"context"

	"github.com/getpup/schemafleet"
)

// TenantStore provides persistence for tenant records.
// Implementations must be safe for concurrent access.
type TenantStore interface {
	// GetTenant returns a tenant by ID.
	// Returns ErrTenantNotFound if the tenant does not exist.
	GetTenant(ctx context.Context, tenantID string) (schemafleet.Tenant, error)

	// GetTenantBySubdomain returns a tenant by its subdomain.
	// Returns ErrTenantNotFound if the tenant does not exist.
	GetTenantBySubdomain(ctx context.Context, subdomain string) (schemafleet.Tenant, error)

	// ListActiveTenants returns all tenants flagged active.
	// Returns an empty slice if no active tenants exist.
	ListActiveTenants(ctx context.Context) ([]schemafleet.Tenant, error)

	// SubdomainTaken reports whether any tenant already uses the subdomain.
	// The check is case-insensitive and always hits the backing store, never
	// a cache, so provisioning cannot race against stale cache entries.
	SubdomainTaken(ctx context.Context, subdomain string) (bool, error)

	// CreateTenant creates the tenant's schema and inserts the tenant row,
	// as close to atomically as the backing store allows. Implementations
	// with transactional DDL must perform both inside one transaction;
	// otherwise schema creation runs first, since an orphaned empty schema
	// is recoverable and a tenant row without a schema is not.
	CreateTenant(ctx context.Context, tenant schemafleet.Tenant) error
}

// LedgerStore provides the durable record of which migration versions have
// been applied to which tenant. Entries are append-only under normal
// operation; Remove exists solely for rollback.
type LedgerStore interface {
	// Applied returns all ledger entries for the tenant, ordered by version.
	// Returns an empty slice if no migrations have executed for the tenant.
	Applied(ctx context.Context, tenantID string) ([]schemafleet.LedgerEntry, error)

	// Latest returns the most recently executed entry for the tenant,
	// by executed-at descending (version descending on ties).
	// Returns ErrLedgerEmpty if no migrations have executed for the tenant.
	Latest(ctx context.Context, tenantID string) (schemafleet.LedgerEntry, error)

	// Record appends a ledger entry for the (tenant, version) pair.
	// At most one entry may exist per pair; recording a duplicate is an error.
	Record(ctx context.Context, tenantID, version string) error

	// Remove deletes the ledger entry for the (tenant, version) pair.
	// Returns ErrLedgerEntryNotFound if no such entry exists.
	Remove(ctx context.Context, tenantID, version string) error
}
