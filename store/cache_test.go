package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/getpup/schemafleet"
)

func cachedTenant(id string) schemafleet.Tenant {
	return schemafleet.Tenant{ID: id, Subdomain: id, Schema: schemafleet.DeriveSchemaName(id)}
}

func TestMemoryTenantCache_SetAndGet(t *testing.T) {
	cache := NewMemoryTenantCache()
	tenant := cachedTenant("acme")

	cache.Set("id:acme", tenant, time.Minute)

	got, ok := cache.Get("id:acme")
	assert.True(t, ok)
	assert.Equal(t, tenant, got)
}

func TestMemoryTenantCache_Miss(t *testing.T) {
	cache := NewMemoryTenantCache()

	_, ok := cache.Get("id:missing")
	assert.False(t, ok)
}

func TestMemoryTenantCache_Expiry(t *testing.T) {
	cache := NewMemoryTenantCache()
	cache.Set("id:acme", cachedTenant("acme"), time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("id:acme")
	assert.False(t, ok, "expired entry should be treated as missing")
}

func TestMemoryTenantCache_Delete(t *testing.T) {
	cache := NewMemoryTenantCache()
	cache.Set("id:acme", cachedTenant("acme"), time.Minute)

	cache.Delete("id:acme")

	_, ok := cache.Get("id:acme")
	assert.False(t, ok)
}

func TestMemoryTenantCache_Purge(t *testing.T) {
	cache := NewMemoryTenantCache()
	cache.Set("id:acme", cachedTenant("acme"), time.Minute)
	cache.Set("sub:acme", cachedTenant("acme"), time.Minute)

	cache.Purge()

	_, ok := cache.Get("id:acme")
	assert.False(t, ok)
	_, ok = cache.Get("sub:acme")
	assert.False(t, ok)
}

func TestMemoryTenantCache_OverwriteRefreshesTTL(t *testing.T) {
	cache := NewMemoryTenantCache()
	cache.Set("id:acme", cachedTenant("acme"), time.Millisecond)
	cache.Set("id:acme", cachedTenant("acme"), time.Minute)

	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("id:acme")
	assert.True(t, ok)
}
