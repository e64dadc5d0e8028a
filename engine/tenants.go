package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/store"
)

// TenantRegistryConfig holds configuration for the TenantRegistry.
type TenantRegistryConfig struct {
	// Store is the backing tenant store (required).
	Store store.TenantStore

	// Cache caches resolved tenants (default: in-memory TTL cache).
	Cache store.TenantCache

	// CacheTTL is how long a cached tenant stays fresh (default: 30s).
	// Callers must not assume freshness beyond this window.
	CacheTTL time.Duration

	// Logger is for observability (default: no-op).
	Logger *zap.Logger
}

// TenantRegistry resolves tenant identifiers to validated tenant records.
// Successful lookups are cached under both the tenant ID and the subdomain.
type TenantRegistry struct {
	config TenantRegistryConfig
}

// NewTenantRegistry creates a new TenantRegistry with the given configuration.
// Applies default values for Cache, CacheTTL, and Logger if unset.
func NewTenantRegistry(cfg TenantRegistryConfig) *TenantRegistry {
	if cfg.Cache == nil {
		cfg.Cache = store.NewMemoryTenantCache()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &TenantRegistry{config: cfg}
}

func idCacheKey(tenantID string) string   { return "id:" + tenantID }
func subCacheKey(subdomain string) string { return "sub:" + subdomain }

// Resolve returns the tenant for the given identifier, which may be either a
// tenant ID or a subdomain. Returns ErrTenantNotFound if neither matches.
func (r *TenantRegistry) Resolve(ctx context.Context, identifier string) (schemafleet.Tenant, error) {
	if tenant, ok := r.config.Cache.Get(idCacheKey(identifier)); ok {
		return tenant, nil
	}
	if tenant, ok := r.config.Cache.Get(subCacheKey(identifier)); ok {
		return tenant, nil
	}

	tenant, err := r.config.Store.GetTenant(ctx, identifier)
	if errors.Is(err, store.ErrTenantNotFound) {
		tenant, err = r.config.Store.GetTenantBySubdomain(ctx, identifier)
	}
	if errors.Is(err, store.ErrTenantNotFound) {
		return schemafleet.Tenant{}, fmt.Errorf("resolve %s: %w", identifier, schemafleet.ErrTenantNotFound)
	}
	if err != nil {
		return schemafleet.Tenant{}, fmt.Errorf("resolve %s: %w", identifier, err)
	}

	r.config.Cache.Set(idCacheKey(tenant.ID), tenant, r.config.CacheTTL)
	r.config.Cache.Set(subCacheKey(tenant.Subdomain), tenant, r.config.CacheTTL)

	r.config.Logger.Debug("tenant resolved from store",
		zap.String("tenant_id", tenant.ID),
		zap.String("subdomain", tenant.Subdomain))

	return tenant, nil
}

// Validate resolves the identifier and rejects tenants that must not be
// operated on, each with a distinct error: ErrTenantNotFound,
// ErrTenantInactive, ErrTenantSuspended, or ErrSubscriptionExpired.
func (r *TenantRegistry) Validate(ctx context.Context, identifier string) (schemafleet.Tenant, error) {
	tenant, err := r.Resolve(ctx, identifier)
	if err != nil {
		return schemafleet.Tenant{}, err
	}

	if !tenant.Active {
		return schemafleet.Tenant{}, fmt.Errorf("tenant %s: %w", tenant.ID, schemafleet.ErrTenantInactive)
	}

	switch tenant.Status {
	case schemafleet.TenantStatusSuspended:
		return schemafleet.Tenant{}, fmt.Errorf("tenant %s: %w", tenant.ID, schemafleet.ErrTenantSuspended)
	case schemafleet.TenantStatusExpired:
		return schemafleet.Tenant{}, fmt.Errorf("tenant %s: %w", tenant.ID, schemafleet.ErrSubscriptionExpired)
	case schemafleet.TenantStatusTrial:
		if !tenant.TrialEndsAt.IsZero() && time.Now().After(tenant.TrialEndsAt) {
			return schemafleet.Tenant{}, fmt.Errorf("tenant %s: trial ended %s: %w",
				tenant.ID, tenant.TrialEndsAt.Format(time.RFC3339), schemafleet.ErrSubscriptionExpired)
		}
	}

	return tenant, nil
}

// Invalidate removes the cached entries for a tenant ID. If the cached record
// is present its subdomain entry is removed as well.
func (r *TenantRegistry) Invalidate(tenantID string) {
	if tenant, ok := r.config.Cache.Get(idCacheKey(tenantID)); ok {
		r.config.Cache.Delete(subCacheKey(tenant.Subdomain))
	}
	r.config.Cache.Delete(idCacheKey(tenantID))
}

// InvalidateAll removes all cached tenant entries.
func (r *TenantRegistry) InvalidateAll() {
	r.config.Cache.Purge()
}
