package schemafleet

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound indicates no tenant matches the given identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive indicates the tenant exists but is flagged inactive.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrTenantSuspended indicates the tenant has been administratively suspended.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrSubscriptionExpired indicates the tenant's subscription or trial has lapsed.
	ErrSubscriptionExpired = errors.New("tenant subscription has expired")

	// ErrNoMigrationsToRollback indicates the ledger holds no entries for the tenant.
	ErrNoMigrationsToRollback = errors.New("no migrations to rollback")

	// ErrVersionNotApplied indicates the requested version is not in the tenant's ledger.
	ErrVersionNotApplied = errors.New("migration version not applied for tenant")

	// ErrUnknownVersion indicates the version is not present in the registry.
	ErrUnknownVersion = errors.New("migration version not registered")

	// ErrRegistryFrozen indicates a registration was attempted after Freeze.
	ErrRegistryFrozen = errors.New("migration registry is frozen")

	// ErrDuplicateVersion indicates a migration version was registered twice.
	ErrDuplicateVersion = errors.New("migration version already registered")

	// ErrSubdomainInvalid indicates the subdomain violates the allowed format.
	ErrSubdomainInvalid = errors.New("subdomain format is invalid")

	// ErrSubdomainReserved indicates the subdomain is on the reserved-word list.
	ErrSubdomainReserved = errors.New("subdomain is reserved")

	// ErrSubdomainTaken indicates another tenant already uses the subdomain.
	ErrSubdomainTaken = errors.New("subdomain is already taken")
)

// MigrationError reports a failed forward action. It identifies the failing
// version and tenant so an operator can fix the migration and re-run.
type MigrationError struct {
	TenantID string
	Version  string
	Err      error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed for tenant %s: %v", e.Version, e.TenantID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MigrationError) Unwrap() error { return e.Err }

// RollbackUnsupportedError reports a rollback attempt against a migration
// whose definition has no reverse action.
type RollbackUnsupportedError struct {
	Version string
}

// Error implements the error interface.
func (e *RollbackUnsupportedError) Error() string {
	return fmt.Sprintf("migration %s has no reverse action", e.Version)
}
