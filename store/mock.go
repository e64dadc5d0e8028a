package store

import (
	"context"
	"sync"

	"github.com/getpup/schemafleet"
)

// MockTenantStore is a configurable mock implementation of TenantStore for
// use in tests. It allows setting up expected return values, tracking method
// calls, and injecting errors for testing error paths.
type MockTenantStore struct {
	mu sync.RWMutex

	// GetTenantFunc is called by GetTenant if set.
	GetTenantFunc func(ctx context.Context, tenantID string) (schemafleet.Tenant, error)

	// GetTenantBySubdomainFunc is called by GetTenantBySubdomain if set.
	GetTenantBySubdomainFunc func(ctx context.Context, subdomain string) (schemafleet.Tenant, error)

	// ListActiveTenantsFunc is called by ListActiveTenants if set.
	ListActiveTenantsFunc func(ctx context.Context) ([]schemafleet.Tenant, error)

	// SubdomainTakenFunc is called by SubdomainTaken if set.
	SubdomainTakenFunc func(ctx context.Context, subdomain string) (bool, error)

	// CreateTenantFunc is called by CreateTenant if set.
	CreateTenantFunc func(ctx context.Context, tenant schemafleet.Tenant) error

	// Call tracking
	GetTenantCalls            []GetTenantCall
	GetTenantBySubdomainCalls []GetTenantBySubdomainCall
	ListActiveTenantsCalls    int
	SubdomainTakenCalls       []SubdomainTakenCall
	CreateTenantCalls         []CreateTenantCall
}

// Call tracking structs
type GetTenantCall struct {
	TenantID string
}

type GetTenantBySubdomainCall struct {
	Subdomain string
}

type SubdomainTakenCall struct {
	Subdomain string
}

type CreateTenantCall struct {
	Tenant schemafleet.Tenant
}

// NewMockTenantStore creates a new mock tenant store.
func NewMockTenantStore() *MockTenantStore {
	return &MockTenantStore{}
}

// GetTenant implements TenantStore.
func (m *MockTenantStore) GetTenant(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
	m.mu.Lock()
	m.GetTenantCalls = append(m.GetTenantCalls, GetTenantCall{TenantID: tenantID})
	m.mu.Unlock()

	if m.GetTenantFunc != nil {
		return m.GetTenantFunc(ctx, tenantID)
	}

	return schemafleet.Tenant{}, ErrTenantNotFound
}

// GetTenantBySubdomain implements TenantStore.
func (m *MockTenantStore) GetTenantBySubdomain(ctx context.Context, subdomain string) (schemafleet.Tenant, error) {
	m.mu.Lock()
	m.GetTenantBySubdomainCalls = append(m.GetTenantBySubdomainCalls, GetTenantBySubdomainCall{Subdomain: subdomain})
	m.mu.Unlock()

	if m.GetTenantBySubdomainFunc != nil {
		return m.GetTenantBySubdomainFunc(ctx, subdomain)
	}

	return schemafleet.Tenant{}, ErrTenantNotFound
}

// ListActiveTenants implements TenantStore.
func (m *MockTenantStore) ListActiveTenants(ctx context.Context) ([]schemafleet.Tenant, error) {
	m.mu.Lock()
	m.ListActiveTenantsCalls++
	m.mu.Unlock()

	if m.ListActiveTenantsFunc != nil {
		return m.ListActiveTenantsFunc(ctx)
	}

	return []schemafleet.Tenant{}, nil
}

// SubdomainTaken implements TenantStore.
func (m *MockTenantStore) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	m.mu.Lock()
	m.SubdomainTakenCalls = append(m.SubdomainTakenCalls, SubdomainTakenCall{Subdomain: subdomain})
	m.mu.Unlock()

	if m.SubdomainTakenFunc != nil {
		return m.SubdomainTakenFunc(ctx, subdomain)
	}

	return false, nil
}

// CreateTenant implements TenantStore.
func (m *MockTenantStore) CreateTenant(ctx context.Context, tenant schemafleet.Tenant) error {
	m.mu.Lock()
	m.CreateTenantCalls = append(m.CreateTenantCalls, CreateTenantCall{Tenant: tenant})
	m.mu.Unlock()

	if m.CreateTenantFunc != nil {
		return m.CreateTenantFunc(ctx, tenant)
	}

	return nil
}

// Reset clears all call tracking data.
func (m *MockTenantStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetTenantCalls = nil
	m.GetTenantBySubdomainCalls = nil
	m.ListActiveTenantsCalls = 0
	m.SubdomainTakenCalls = nil
	m.CreateTenantCalls = nil
}

// MockLedgerStore is a configurable mock implementation of LedgerStore for
// use in tests.
type MockLedgerStore struct {
	mu sync.RWMutex

	// AppliedFunc is called by Applied if set.
	AppliedFunc func(ctx context.Context, tenantID string) ([]schemafleet.LedgerEntry, error)

	// LatestFunc is called by Latest if set.
	LatestFunc func(ctx context.Context, tenantID string) (schemafleet.LedgerEntry, error)

	// RecordFunc is called by Record if set.
	RecordFunc func(ctx context.Context, tenantID, version string) error

	// RemoveFunc is called by Remove if set.
	RemoveFunc func(ctx context.Context, tenantID, version string) error

	// Call tracking
	AppliedCalls []AppliedCall
	LatestCalls  []LatestCall
	RecordCalls  []RecordCall
	RemoveCalls  []RemoveCall
}

type AppliedCall struct {
	TenantID string
}

type LatestCall struct {
	TenantID string
}

type RecordCall struct {
	TenantID string
	Version  string
}

type RemoveCall struct {
	TenantID string
	Version  string
}

// NewMockLedgerStore creates a new mock ledger store.
func NewMockLedgerStore() *MockLedgerStore {
	return &MockLedgerStore{}
}

// Applied implements LedgerStore.
func (m *MockLedgerStore) Applied(ctx context.Context, tenantID string) ([]schemafleet.LedgerEntry, error) {
	m.mu.Lock()
	m.AppliedCalls = append(m.AppliedCalls, AppliedCall{TenantID: tenantID})
	m.mu.Unlock()

	if m.AppliedFunc != nil {
		return m.AppliedFunc(ctx, tenantID)
	}

	return []schemafleet.LedgerEntry{}, nil
}

// Latest implements LedgerStore.
func (m *MockLedgerStore) Latest(ctx context.Context, tenantID string) (schemafleet.LedgerEntry, error) {
	m.mu.Lock()
	m.LatestCalls = append(m.LatestCalls, LatestCall{TenantID: tenantID})
	m.mu.Unlock()

	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, tenantID)
	}

	return schemafleet.LedgerEntry{}, ErrLedgerEmpty
}

// Record implements LedgerStore.
func (m *MockLedgerStore) Record(ctx context.Context, tenantID, version string) error {
	m.mu.Lock()
	m.RecordCalls = append(m.RecordCalls, RecordCall{TenantID: tenantID, Version: version})
	m.mu.Unlock()

	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, tenantID, version)
	}

	return nil
}

// Remove implements LedgerStore.
func (m *MockLedgerStore) Remove(ctx context.Context, tenantID, version string) error {
	m.mu.Lock()
	m.RemoveCalls = append(m.RemoveCalls, RemoveCall{TenantID: tenantID, Version: version})
	m.mu.Unlock()

	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, tenantID, version)
	}

	return nil
}

// Reset clears all call tracking data.
func (m *MockLedgerStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppliedCalls = nil
	m.LatestCalls = nil
	m.RecordCalls = nil
	m.RemoveCalls = nil
}
