// Package engine wires tenant stores, the migration catalog, and statement
// executors into the components that operate tenant schemas: the provisioner,
// the tenant registry, the per-tenant runner, the fleet runner, the rollback
// coordinator, and the status reporter.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/metrics"
	"github.com/getpup/schemafleet/store"
)

// FleetConfig holds configuration for the FleetRunner.
type FleetConfig struct {
	// Store enumerates active tenants (required).
	Store store.TenantStore

	// Runner executes pending migrations per tenant (required).
	Runner *Runner

	// Workers bounds how many tenants migrate concurrently (default: 1,
	// sequential). Tenants share nothing but the backing connection pool;
	// size this against pool capacity so concurrent request traffic is not
	// starved.
	Workers int

	// Logger is for observability (default: no-op).
	Logger *zap.Logger

	// Metrics collects fleet metrics (default: shared collector).
	Metrics *metrics.Collector
}

// FleetRunner runs pending migrations for every active tenant, isolating
// per-tenant failures so one tenant's broken migration never halts the rest
// of the fleet.
type FleetRunner struct {
	config FleetConfig
}

// NewFleetRunner creates a new FleetRunner with the given configuration.
// Applies default values for Workers, Logger, and Metrics.
func NewFleetRunner(cfg FleetConfig) *FleetRunner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewCollector()
	}

	return &FleetRunner{config: cfg}
}

// RunAll runs pending migrations for every active tenant and reports the
// per-tenant outcomes. A tenant failure is recorded and logged with full
// context, then the sweep continues; the sweep itself completes even if
// every tenant fails. The returned error is non-nil only when the tenant
// list cannot be enumerated at all.
func (f *FleetRunner) RunAll(ctx context.Context) (schemafleet.FleetReport, error) {
	tenants, err := f.config.Store.ListActiveTenants(ctx)
	if err != nil {
		return schemafleet.FleetReport{}, fmt.Errorf("failed to list active tenants: %w", err)
	}

	f.config.Metrics.IncFleetSweeps()
	f.config.Logger.Info("starting fleet sweep",
		zap.Int("tenants", len(tenants)),
		zap.Int("workers", f.config.Workers))

	report := schemafleet.FleetReport{Outcomes: make(map[string]schemafleet.TenantOutcome, len(tenants))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.config.Workers)

	for _, tenant := range tenants {
		wg.Add(1)
		sem <- struct{}{}

		go func(tenant schemafleet.Tenant) {
			defer wg.Done()
			defer func() { <-sem }()

			applied, err := f.config.Runner.RunPending(ctx, tenant.ID)
			if err != nil {
				f.config.Logger.Error("tenant migration failed during fleet sweep",
					zap.String("tenant_id", tenant.ID),
					zap.String("subdomain", tenant.Subdomain),
					zap.Error(err))
			}

			mu.Lock()
			report.Outcomes[tenant.ID] = schemafleet.TenantOutcome{
				TenantID: tenant.ID,
				Applied:  applied,
				Err:      err,
			}
			mu.Unlock()
		}(tenant)
	}

	wg.Wait()

	failed := report.Failed()
	f.config.Metrics.SetFleetTenantFailures(len(failed))
	f.config.Logger.Info("fleet sweep complete",
		zap.Int("tenants", len(tenants)),
		zap.Int("applied", report.Applied()),
		zap.Int("failed", len(failed)))

	return report, nil
}
