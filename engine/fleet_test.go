package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/engine"
	"github.com/getpup/schemafleet/store"
	"github.com/getpup/schemafleet/store/memory"
)

func fleetTenant(id, subdomain string) schemafleet.Tenant {
	return schemafleet.Tenant{
		ID:           id,
		Name:         subdomain,
		Subdomain:    subdomain,
		Schema:       schemafleet.DeriveSchemaName(subdomain),
		Plan:         "standard",
		Status:       schemafleet.TenantStatusActive,
		Active:       true,
		ContactEmail: "ops@" + subdomain + ".example",
		CreatedAt:    time.Now(),
	}
}

func setupFleet(t *testing.T, registry *schemafleet.Registry, executor *memory.Executor, workers int, tenantList ...schemafleet.Tenant) (*engine.FleetRunner, *memory.Store) {
	t.Helper()

	memStore := memory.New()
	for _, tenant := range tenantList {
		memStore.PutTenant(tenant)
	}

	tenants := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: memStore})
	runner := engine.NewRunner(engine.RunnerConfig{
		Registry: registry,
		Tenants:  tenants,
		Ledger:   memStore,
		Executor: executor,
	})

	fleet := engine.NewFleetRunner(engine.FleetConfig{
		Store:   memStore,
		Runner:  runner,
		Workers: workers,
	})
	return fleet, memStore
}

func TestRunAll_MigratesEveryActiveTenant(t *testing.T) {
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(tableMigration("v1.1.0", "accounts")))
	require.NoError(t, registry.Register(tableMigration("v1.2.0", "journal_entries")))

	executor := memory.NewExecutor()
	fleet, _ := setupFleet(t, registry, executor, 1,
		fleetTenant("t-1", "acme"),
		fleetTenant("t-2", "globex"),
		fleetTenant("t-3", "initech"))

	report, err := fleet.RunAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Outcomes, 3)
	assert.Empty(t, report.Failed())
	assert.Equal(t, 6, report.Applied())
	assert.Len(t, executor.Statements(), 6)
}

func TestRunAll_IsolatesTenantFailure(t *testing.T) {
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(tableMigration("v1.1.0", "accounts")))

	// Statements against globex's schema fail; the others succeed.
	executor := &memory.Executor{FailPattern: "tenant_globex"}
	fleet, memStore := setupFleet(t, registry, executor, 1,
		fleetTenant("t-1", "acme"),
		fleetTenant("t-2", "globex"),
		fleetTenant("t-3", "initech"))

	report, err := fleet.RunAll(context.Background())
	require.NoError(t, err, "a tenant failure must not fail the sweep")

	assert.Len(t, report.Outcomes, 3)
	assert.Equal(t, []string{"t-2"}, report.Failed())
	assert.Equal(t, 2, report.Applied())

	var migErr *schemafleet.MigrationError
	require.ErrorAs(t, report.Outcomes["t-2"].Err, &migErr)
	assert.Equal(t, "t-2", migErr.TenantID)
	assert.Equal(t, "v1.1.0", migErr.Version)

	// Healthy tenants are ledgered, the failed one is not
	entries, qerr := memStore.Applied(context.Background(), "t-1")
	require.NoError(t, qerr)
	assert.Len(t, entries, 1)
	entries, qerr = memStore.Applied(context.Background(), "t-2")
	require.NoError(t, qerr)
	assert.Empty(t, entries)
}

func TestRunAll_CompletesWhenEveryTenantFails(t *testing.T) {
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(tableMigration("v1.1.0", "accounts")))

	executor := &memory.Executor{FailPattern: "CREATE"}
	fleet, _ := setupFleet(t, registry, executor, 2,
		fleetTenant("t-1", "acme"),
		fleetTenant("t-2", "globex"))

	report, err := fleet.RunAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Failed(), 2)
	assert.Equal(t, 0, report.Applied())
}

func TestRunAll_EnumerationFailure(t *testing.T) {
	mockStore := store.NewMockTenantStore()
	mockStore.ListActiveTenantsFunc = func(ctx context.Context) ([]schemafleet.Tenant, error) {
		return nil, errors.New("connection refused")
	}

	registry := schemafleet.NewRegistry()
	tenants := engine.NewTenantRegistry(engine.TenantRegistryConfig{Store: mockStore})
	runner := engine.NewRunner(engine.RunnerConfig{
		Registry: registry,
		Tenants:  tenants,
		Ledger:   store.NewMockLedgerStore(),
		Executor: memory.NewExecutor(),
	})

	fleet := engine.NewFleetRunner(engine.FleetConfig{
		Store:  mockStore,
		Runner: runner,
	})

	_, err := fleet.RunAll(context.Background())
	assert.Error(t, err, "enumeration failure is the only whole-sweep error")
}

func TestRunAll_EmptyFleet(t *testing.T) {
	registry := schemafleet.NewRegistry()
	fleet, _ := setupFleet(t, registry, memory.NewExecutor(), 1)

	report, err := fleet.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, 0, report.Applied())
}

func TestRunAll_BoundsConcurrency(t *testing.T) {
	var current, peak int64
	var mu sync.Mutex

	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(schemafleet.Migration{
		Version: "v1.0.0",
		Name:    "slow",
		Up: func(ctx context.Context, schema schemafleet.SchemaName, exec schemafleet.StatementExecutor) error {
			n := atomic.AddInt64(&current, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			return nil
		},
	}))

	fleet, _ := setupFleet(t, registry, memory.NewExecutor(), 2,
		fleetTenant("t-1", "acme"),
		fleetTenant("t-2", "globex"),
		fleetTenant("t-3", "initech"),
		fleetTenant("t-4", "umbrella"),
		fleetTenant("t-5", "wonka"))

	report, err := fleet.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failed())

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int64(2), "no more than Workers tenants migrate at once")
}
