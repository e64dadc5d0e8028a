package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/store"
)

// Store is a PostgreSQL implementation of TenantStore and LedgerStore.
// It also exposes the underlying *sql.DB as the statement-execution handle
// for migration actions.
type Store struct {
	db           *sql.DB
	tenantsTable string
	ledgerTable  string
}

// Compile-time checks that Store implements both store interfaces.
var (
	_ store.TenantStore = (*Store)(nil)
	_ store.LedgerStore = (*Store)(nil)
)

// New creates a new PostgreSQL store with default table names.
func New(db *sql.DB) *Store {
	return NewWithConfig(db, DefaultTableConfig())
}

// NewWithConfig creates a new PostgreSQL store with custom table names.
func NewWithConfig(db *sql.DB, config TableConfig) *Store {
	return &Store{
		db:           db,
		tenantsTable: config.TenantsTable,
		ledgerTable:  config.LedgerTable,
	}
}

// Executor returns the statement-execution handle for migration actions.
func (s *Store) Executor() schemafleet.StatementExecutor {
	return s.db
}

const tenantColumns = "id, name, subdomain, schema_name, plan, status, active, contact_email, contact_phone, trial_ends_at, created_at"

func (s *Store) scanTenant(row interface {
	Scan(dest ...interface{}) error
}) (schemafleet.Tenant, error) {
	var t schemafleet.Tenant
	var schema string
	var phone sql.NullString
	var trialEndsAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Subdomain,
		&schema,
		&t.Plan,
		&t.Status,
		&t.Active,
		&t.ContactEmail,
		&phone,
		&trialEndsAt,
		&t.CreatedAt,
	)
	if err != nil {
		return schemafleet.Tenant{}, err
	}

	t.Schema = schemafleet.SchemaName(schema)
	if phone.Valid {
		t.ContactPhone = phone.String
	}
	if trialEndsAt.Valid {
		t.TrialEndsAt = trialEndsAt.Time
	}

	return t, nil
}

// GetTenant returns a tenant by ID.
// Returns store.ErrTenantNotFound if the tenant does not exist.
func (s *Store) GetTenant(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, tenantColumns, s.tenantsTable)

	tenant, err := s.scanTenant(s.db.QueryRowContext(ctx, query, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return schemafleet.Tenant{}, store.ErrTenantNotFound
	}
	if err != nil {
		return schemafleet.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

// GetTenantBySubdomain returns a tenant by its subdomain (case-insensitive).
// Returns store.ErrTenantNotFound if the tenant does not exist.
func (s *Store) GetTenantBySubdomain(ctx context.Context, subdomain string) (schemafleet.Tenant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE LOWER(subdomain) = LOWER($1)
	`, tenantColumns, s.tenantsTable)

	tenant, err := s.scanTenant(s.db.QueryRowContext(ctx, query, subdomain))
	if errors.Is(err, sql.ErrNoRows) {
		return schemafleet.Tenant{}, store.ErrTenantNotFound
	}
	if err != nil {
		return schemafleet.Tenant{}, fmt.Errorf("failed to get tenant by subdomain: %w", err)
	}

	return tenant, nil
}

// ListActiveTenants returns all tenants flagged active, ordered by creation time.
func (s *Store) ListActiveTenants(ctx context.Context) ([]schemafleet.Tenant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE active
		ORDER BY created_at
	`, tenantColumns, s.tenantsTable)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []schemafleet.Tenant
	for rows.Next() {
		tenant, err := s.scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}

// SubdomainTaken reports whether any tenant already uses the subdomain.
// The check is case-insensitive and always queries the table directly.
func (s *Store) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE LOWER(subdomain) = LOWER($1)
		)
	`, s.tenantsTable)

	var taken bool
	if err := s.db.QueryRowContext(ctx, query, subdomain).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check subdomain: %w", err)
	}

	return taken, nil
}

// CreateTenant creates the tenant's schema and inserts the tenant row inside
// a single transaction. PostgreSQL DDL is transactional, so either both
// happen or neither does.
// Returns store.ErrSubdomainExists if the subdomain unique index rejects the row.
func (s *Store) CreateTenant(ctx context.Context, tenant schemafleet.Tenant) error {
	if err := tenant.Schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema name: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Schema name is a validated identifier, not raw request input.
	createSchema := fmt.Sprintf("CREATE SCHEMA %s", tenant.Schema)
	if _, err := tx.ExecContext(ctx, createSchema); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", tenant.Schema, err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (id, name, subdomain, schema_name, plan, status, active, contact_email, contact_phone, trial_ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`, s.tenantsTable)

	var phone interface{}
	if tenant.ContactPhone != "" {
		phone = tenant.ContactPhone
	}
	var trialEndsAt interface{}
	if !tenant.TrialEndsAt.IsZero() {
		trialEndsAt = tenant.TrialEndsAt
	}

	_, err = tx.ExecContext(ctx, insert,
		tenant.ID,
		tenant.Name,
		tenant.Subdomain,
		tenant.Schema.String(),
		tenant.Plan,
		string(tenant.Status),
		tenant.Active,
		tenant.ContactEmail,
		phone,
		trialEndsAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return store.ErrSubdomainExists
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tenant creation: %w", err)
	}

	return nil
}

// Applied returns all ledger entries for the tenant, ordered by version.
func (s *Store) Applied(ctx context.Context, tenantID string) ([]schemafleet.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT tenant_id, migration_version, executed_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY migration_version
	`, s.ledgerTable)

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []schemafleet.LedgerEntry
	for rows.Next() {
		var e schemafleet.LedgerEntry
		if err := rows.Scan(&e.TenantID, &e.Version, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

// Latest returns the most recently executed entry for the tenant.
// Returns store.ErrLedgerEmpty if no migrations have executed for the tenant.
func (s *Store) Latest(ctx context.Context, tenantID string) (schemafleet.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT tenant_id, migration_version, executed_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY executed_at DESC, migration_version DESC
		LIMIT 1
	`, s.ledgerTable)

	var e schemafleet.LedgerEntry
	err := s.db.QueryRowContext(ctx, query, tenantID).Scan(&e.TenantID, &e.Version, &e.ExecutedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schemafleet.LedgerEntry{}, store.ErrLedgerEmpty
	}
	if err != nil {
		return schemafleet.LedgerEntry{}, fmt.Errorf("failed to get latest ledger entry: %w", err)
	}

	return e, nil
}

// Record appends a ledger entry for the (tenant, version) pair.
// Returns store.ErrDuplicateLedgerEntry if the unique index rejects the row.
func (s *Store) Record(ctx context.Context, tenantID, version string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, migration_version, executed_at)
		VALUES ($1, $2, NOW())
	`, s.ledgerTable)

	if _, err := s.db.ExecContext(ctx, query, tenantID, version); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return store.ErrDuplicateLedgerEntry
		}
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return nil
}

// Remove deletes the ledger entry for the (tenant, version) pair.
// Returns store.ErrLedgerEntryNotFound if no such entry exists.
func (s *Store) Remove(ctx context.Context, tenantID, version string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE tenant_id = $1 AND migration_version = $2
	`, s.ledgerTable)

	result, err := s.db.ExecContext(ctx, query, tenantID, version)
	if err != nil {
		return fmt.Errorf("failed to remove ledger entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrLedgerEntryNotFound
	}

	return nil
}
