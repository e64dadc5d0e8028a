package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/engine"
	"github.com/getpup/schemafleet/store"
)

func activeTenant() schemafleet.Tenant {
	return schemafleet.Tenant{
		ID:           "tenant-1",
		Name:         "Acme Corp",
		Subdomain:    "acme",
		Schema:       "tenant_acme",
		Plan:         "standard",
		Status:       schemafleet.TenantStatusActive,
		Active:       true,
		ContactEmail: "ops@acme.example",
		CreatedAt:    time.Now(),
	}
}

func TestResolve_ByID(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	tenant := activeTenant()
	mockStore.GetTenantFunc = func(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
		if tenantID == tenant.ID {
			return tenant, nil
		}
		return schemafleet.Tenant{}, store.ErrTenantNotFound
	}

	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})

	resolved, err := registry.Resolve(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, resolved.ID)
	assert.Len(t, mockStore.GetTenantCalls, 1)
	assert.Len(t, mockStore.GetTenantBySubdomainCalls, 0)
}

func TestResolve_FallsBackToSubdomain(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	tenant := activeTenant()
	mockStore.GetTenantBySubdomainFunc = func(ctx context.Context, subdomain string) (schemafleet.Tenant, error) {
		if subdomain == tenant.Subdomain {
			return tenant, nil
		}
		return schemafleet.Tenant{}, store.ErrTenantNotFound
	}

	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})

	resolved, err := registry.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, resolved.ID)
	assert.Len(t, mockStore.GetTenantCalls, 1)
	assert.Len(t, mockStore.GetTenantBySubdomainCalls, 1)
}

func TestResolve_NotFound(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})

	_, err := registry.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, schemafleet.ErrTenantNotFound)
}

func TestResolve_CachesUnderBothKeys(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	tenant := activeTenant()
	mockStore.GetTenantFunc = func(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
		return tenant, nil
	}

	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})
	ctx := context.Background()

	_, err := registry.Resolve(ctx, "tenant-1")
	require.NoError(t, err)

	// Both the ID and the subdomain now hit the cache, not the store.
	_, err = registry.Resolve(ctx, "tenant-1")
	require.NoError(t, err)
	_, err = registry.Resolve(ctx, "acme")
	require.NoError(t, err)

	assert.Len(t, mockStore.GetTenantCalls, 1, "second and third lookups should be cached")
}

func TestResolve_CacheExpires(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	tenant := activeTenant()
	mockStore.GetTenantFunc = func(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
		return tenant, nil
	}

	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{
		Store:    mockStore,
		CacheTTL: time.Millisecond,
	})
	ctx := context.Background()

	_, err := registry.Resolve(ctx, "tenant-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = registry.Resolve(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, mockStore.GetTenantCalls, 2, "expired entry should fall through to the store")
}

func TestInvalidate_RemovesBothKeys(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	tenant := activeTenant()
	mockStore.GetTenantFunc = func(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
		return tenant, nil
	}

	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})
	ctx := context.Background()

	_, err := registry.Resolve(ctx, "tenant-1")
	require.NoError(t, err)

	registry.Invalidate("tenant-1")

	_, err = registry.Resolve(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, mockStore.GetTenantCalls, 2, "invalidation should evict the subdomain key too")
}

func TestValidate_RejectionReasons(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*schemafleet.Tenant)
		expected error
	}{
		{
			name:     "inactive",
			mutate:   func(tn *schemafleet.Tenant) { tn.Active = false },
			expected: schemafleet.ErrTenantInactive,
		},
		{
			name:     "suspended",
			mutate:   func(tn *schemafleet.Tenant) { tn.Status = schemafleet.TenantStatusSuspended },
			expected: schemafleet.ErrTenantSuspended,
		},
		{
			name:     "expired",
			mutate:   func(tn *schemafleet.Tenant) { tn.Status = schemafleet.TenantStatusExpired },
			expected: schemafleet.ErrSubscriptionExpired,
		},
		{
			name: "trial past end date",
			mutate: func(tn *schemafleet.Tenant) {
				tn.Status = schemafleet.TenantStatusTrial
				tn.TrialEndsAt = time.Now().Add(-time.Hour)
			},
			expected: schemafleet.ErrSubscriptionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := activeTenant()
			tt.mutate(&tenant)

			mockStore := store.NewMockTenantStore()
			mockStore.GetTenantFunc = func(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
				return tenant, nil
			}

			registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})
			_, err := registry.Validate(context.Background(), tenant.ID)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestValidate_TrialWithinWindowAccepted(t *testing.T) {
	tenant := activeTenant()
	tenant.Status = schemafleet.TenantStatusTrial
	tenant.TrialEndsAt = time.Now().Add(24 * time.Hour)

	mockStore := store.NewMockTenantStore()
	mockStore.GetTenantFunc = func(ctx context.Context, tenantID string) (schemafleet.Tenant, error) {
		return tenant, nil
	}

	registry := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})
	validated, err := registry.Validate(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, validated.ID)
}
