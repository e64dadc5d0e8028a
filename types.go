package schemafleet

import (
	"context"
	"database/sql"
	"time"
)

// TenantStatus represents the subscription lifecycle state of a tenant.
type TenantStatus string

const (
	// TenantStatusTrial indicates the tenant is inside its trial window.
	TenantStatusTrial TenantStatus = "trial"

	// TenantStatusActive indicates the tenant has a paid, current subscription.
	TenantStatusActive TenantStatus = "active"

	// TenantStatusSuspended indicates the tenant has been administratively suspended.
	TenantStatusSuspended TenantStatus = "suspended"

	// TenantStatusExpired indicates the tenant's subscription or trial has lapsed.
	TenantStatusExpired TenantStatus = "expired"
)

// Tenant represents an isolated customer account mapped to its own schema
// within the shared database instance.
type Tenant struct {
	// ID is the unique identifier for this tenant (UUID).
	ID string

	// Name is the display name of the tenant.
	Name string

	// Subdomain is the unique subdomain the tenant is reached under.
	// The schema name is derived from it and is stable once created.
	Subdomain string

	// Schema is the derived schema name holding this tenant's tables.
	Schema SchemaName

	// Plan is the subscription plan identifier.
	Plan string

	// Status is the subscription lifecycle state.
	Status TenantStatus

	// Active reports whether the tenant participates in fleet operations.
	Active bool

	// ContactEmail is the primary contact address.
	ContactEmail string

	// ContactPhone is an optional contact phone number.
	ContactPhone string

	// TrialEndsAt is when the trial window closes. Zero for non-trial tenants.
	TrialEndsAt time.Time

	// CreatedAt is when the tenant was provisioned.
	CreatedAt time.Time
}

// StatementExecutor executes SQL statements against the backing store.
// *sql.DB and *sql.Tx both satisfy it. Forward and reverse actions receive
// an executor together with the validated schema name of the tenant being
// migrated; the schema name is the only value that may be interpolated into
// statement text.
type StatementExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// MigrateFunc applies (or undoes) one structural change against a tenant
// schema. Implementations should prefer single-statement or idempotent DDL:
// a failed forward action leaves the version pending and the runner will
// re-attempt it on the next run, without undoing partially applied statements.
type MigrateFunc func(ctx context.Context, schema SchemaName, exec StatementExecutor) error

// Migration is a versioned, named structural change applicable to a tenant's
// schema. Definitions are registered once at startup and are immutable
// afterwards.
type Migration struct {
	// Version orders the migration within the registry. Ordering is plain
	// lexicographic string comparison; see Registry for the contract.
	Version string

	// Name is a short human-readable name.
	Name string

	// Description explains what the migration changes.
	Description string

	// Up applies the structural change (required).
	Up MigrateFunc

	// Down undoes the structural change (optional). A migration without a
	// Down action cannot be rolled back.
	Down MigrateFunc
}

// LedgerEntry records that a migration version has executed for a tenant.
type LedgerEntry struct {
	// TenantID is the tenant the migration ran against.
	TenantID string

	// Version is the migration version that executed.
	Version string

	// ExecutedAt is when the forward action completed.
	ExecutedAt time.Time
}

// StatusReport summarizes migration state for one tenant. Executed and
// Pending are both in registry order and always partition the registry:
// len(Executed) + len(Pending) == Total.
type StatusReport struct {
	// TenantID is the tenant the report describes.
	TenantID string

	// Executed lists registered versions recorded in the ledger.
	Executed []string

	// Pending lists registered versions absent from the ledger.
	Pending []string

	// Total is the number of registered migrations.
	Total int
}

// TenantOutcome is the result of running pending migrations for one tenant
// during a fleet sweep.
type TenantOutcome struct {
	// TenantID is the tenant the outcome describes.
	TenantID string

	// Applied is the number of migrations applied during the sweep.
	Applied int

	// Err is the failure, if any. A nil Err means the tenant is up to date.
	Err error
}

// FleetReport collects per-tenant outcomes from a fleet sweep.
type FleetReport struct {
	// Outcomes maps tenant ID to the result for that tenant.
	Outcomes map[string]TenantOutcome
}

// Failed returns the IDs of tenants whose sweep failed.
func (r FleetReport) Failed() []string {
	var failed []string
	for id, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, id)
		}
	}
	return failed
}

// Applied returns the total number of migrations applied across the fleet.
func (r FleetReport) Applied() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Applied
	}
	return total
}
