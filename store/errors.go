package store

import "errors"

var (
	// ErrTenantNotFound indicates the tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrLedgerEmpty indicates the ledger holds no entries for the tenant.
	ErrLedgerEmpty = errors.New("ledger is empty for tenant")

	// ErrLedgerEntryNotFound indicates no ledger entry exists for the (tenant, version) pair.
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")

	// ErrDuplicateLedgerEntry indicates an entry already exists for the (tenant, version) pair.
	ErrDuplicateLedgerEntry = errors.New("ledger entry already exists")

	// ErrSubdomainExists indicates another tenant row already uses the subdomain.
	ErrSubdomainExists = errors.New("subdomain already exists")
)
