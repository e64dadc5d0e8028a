package store

import (
	"sync"
	"time"

	"github.com/getpup/schemafleet"
)

// TenantCache caches resolved tenant records for the tenant registry.
// Implementations must support concurrent reads and explicit invalidation.
type TenantCache interface {
	// Get returns the cached tenant for the key, and whether one was found.
	// Expired entries are treated as missing.
	Get(key string) (schemafleet.Tenant, bool)

	// Set stores a tenant under the key with the given TTL.
	Set(key string, tenant schemafleet.Tenant, ttl time.Duration)

	// Delete removes the entry for the key.
	Delete(key string)

	// Purge removes all entries.
	Purge()
}

type cacheItem struct {
	tenant    schemafleet.Tenant
	expiresAt time.Time
}

// MemoryTenantCache is an in-memory TTL implementation of TenantCache.
type MemoryTenantCache struct {
	mu   sync.RWMutex
	data map[string]cacheItem
}

// Compile-time check that MemoryTenantCache implements TenantCache.
var _ TenantCache = (*MemoryTenantCache)(nil)

// NewMemoryTenantCache creates an empty in-memory tenant cache.
func NewMemoryTenantCache() *MemoryTenantCache {
	return &MemoryTenantCache{
		data: make(map[string]cacheItem),
	}
}

// Get returns the cached tenant for the key, and whether one was found.
func (c *MemoryTenantCache) Get(key string) (schemafleet.Tenant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.data[key]
	if !ok || time.Now().After(item.expiresAt) {
		return schemafleet.Tenant{}, false
	}
	return item.tenant, true
}

// Set stores a tenant under the key with the given TTL.
func (c *MemoryTenantCache) Set(key string, tenant schemafleet.Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheItem{
		tenant:    tenant,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes the entry for the key.
func (c *MemoryTenantCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

// Purge removes all entries.
func (c *MemoryTenantCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]cacheItem)
}
