package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/store"
)

// Store is an in-memory implementation of TenantStore and LedgerStore for
// testing. It provides thread-safe access to tenant and ledger data using a
// sync.RWMutex.
type Store struct {
	mu          sync.RWMutex
	tenants     map[string]schemafleet.Tenant        // tenantID -> tenant
	bySubdomain map[string]string                    // lowercased subdomain -> tenantID
	ledger      map[string][]schemafleet.LedgerEntry // tenantID -> entries
	schemas     map[schemafleet.SchemaName]bool      // created schemas
}

// Compile-time checks that Store implements both store interfaces.
var (
	_ store.TenantStore = (*Store)(nil)
	_ store.LedgerStore = (*Store)(nil)
)

// New creates a new in-memory store with initialized maps.
func New() *Store {
	return &Store{
		tenants:     make(map[string]schemafleet.Tenant),
		bySubdomain: make(map[string]string),
		ledger:      make(map[string][]schemafleet.LedgerEntry),
		schemas:     make(map[schemafleet.SchemaName]bool),
	}
}

// GetTenant returns a tenant by ID.
// Returns store.ErrTenantNotFound if the tenant does not exist.
func (s *Store) GetTenant(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[tenantID]
	if !ok {
		return schemafleet.Tenant{}, store.ErrTenantNotFound
	}
	return tenant, nil
}

// GetTenantBySubdomain returns a tenant by its subdomain.
// Returns store.ErrTenantNotFound if the tenant does not exist.
func (s *Store) GetTenantBySubdomain(ctx context.Context, subdomain string) (schemafleet.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID, ok := s.bySubdomain[strings.ToLower(subdomain)]
	if !ok {
		return schemafleet.Tenant{}, store.ErrTenantNotFound
	}
	return s.tenants[tenantID], nil
}

// ListActiveTenants returns all tenants flagged active, ordered by creation time.
func (s *Store) ListActiveTenants(ctx context.Context) ([]schemafleet.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tenants []schemafleet.Tenant
	for _, t := range s.tenants {
		if t.Active {
			tenants = append(tenants, t)
		}
	}

	sort.Slice(tenants, func(i, j int) bool {
		return tenants[i].CreatedAt.Before(tenants[j].CreatedAt)
	})

	return tenants, nil
}

// SubdomainTaken reports whether any tenant already uses the subdomain.
func (s *Store) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.bySubdomain[strings.ToLower(subdomain)]
	return ok, nil
}

// CreateTenant records the tenant's schema and inserts the tenant record.
// Both happen under one lock acquisition, so creation is atomic.
// Returns store.ErrSubdomainExists if the subdomain or the schema name is
// already in use, matching the unique indexes the postgres store enforces.
func (s *Store) CreateTenant(ctx context.Context, tenant schemafleet.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(tenant.Subdomain)
	if _, ok := s.bySubdomain[key]; ok {
		return store.ErrSubdomainExists
	}
	if s.schemas[tenant.Schema] {
		return store.ErrSubdomainExists
	}

	s.schemas[tenant.Schema] = true
	s.tenants[tenant.ID] = tenant
	s.bySubdomain[key] = tenant.ID

	return nil
}

// SchemaExists reports whether a schema has been created. Test helper.
func (s *Store) SchemaExists(schema schemafleet.SchemaName) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemas[schema]
}

// PutTenant inserts or replaces a tenant record directly, bypassing
// provisioning. Test helper for constructing fixtures.
func (s *Store) PutTenant(tenant schemafleet.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tenants[tenant.ID] = tenant
	s.bySubdomain[strings.ToLower(tenant.Subdomain)] = tenant.ID
	s.schemas[tenant.Schema] = true
}

// Applied returns all ledger entries for the tenant, ordered by version.
func (s *Store) Applied(ctx context.Context, tenantID string) ([]schemafleet.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]schemafleet.LedgerEntry, len(s.ledger[tenantID]))
	copy(entries, s.ledger[tenantID])

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Version < entries[j].Version
	})

	return entries, nil
}

// Latest returns the most recently executed entry for the tenant.
// Returns store.ErrLedgerEmpty if no migrations have executed for the tenant.
func (s *Store) Latest(ctx context.Context, tenantID string) (schemafleet.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.ledger[tenantID]
	if len(entries) == 0 {
		return schemafleet.LedgerEntry{}, store.ErrLedgerEmpty
	}

	latest := entries[0]
	for _, e := range entries[1:] {
		if e.ExecutedAt.After(latest.ExecutedAt) ||
			(e.ExecutedAt.Equal(latest.ExecutedAt) && e.Version > latest.Version) {
			latest = e
		}
	}

	return latest, nil
}

// Record appends a ledger entry for the (tenant, version) pair.
// Returns store.ErrDuplicateLedgerEntry if the pair is already recorded.
func (s *Store) Record(ctx context.Context, tenantID, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.ledger[tenantID] {
		if e.Version == version {
			return store.ErrDuplicateLedgerEntry
		}
	}

	s.ledger[tenantID] = append(s.ledger[tenantID], schemafleet.LedgerEntry{
		TenantID:   tenantID,
		Version:    version,
		ExecutedAt: time.Now(),
	})

	return nil
}

// Remove deletes the ledger entry for the (tenant, version) pair.
// Returns store.ErrLedgerEntryNotFound if no such entry exists.
func (s *Store) Remove(ctx context.Context, tenantID, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.ledger[tenantID]
	for i, e := range entries {
		if e.Version == version {
			s.ledger[tenantID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}

	return store.ErrLedgerEntryNotFound
}
