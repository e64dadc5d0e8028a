package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/metrics"
	"github.com/getpup/schemafleet/store"
)

// RunnerConfig holds configuration for the migration Runner.
type RunnerConfig struct {
	// Registry is the migration catalog (required).
	Registry *schemafleet.Registry

	// Tenants resolves and validates tenant identifiers (required).
	Tenants *TenantRegistry

	// Ledger records which versions have executed per tenant (required).
	Ledger store.LedgerStore

	// Executor runs migration statements against the backing store (required).
	Executor schemafleet.StatementExecutor

	// StatementTimeout bounds each forward/reverse action (default: 5m).
	// The backing store's own statement timeout still applies underneath.
	StatementTimeout time.Duration

	// Logger is for observability (default: no-op).
	Logger *zap.Logger

	// Metrics collects migration metrics (default: shared collector).
	Metrics *metrics.Collector
}

func (cfg *RunnerConfig) applyDefaults() {
	if cfg.StatementTimeout == 0 {
		cfg.StatementTimeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewCollector()
	}
}

// Runner executes pending migrations for a single tenant.
type Runner struct {
	config RunnerConfig
}

// NewRunner creates a new Runner with the given configuration.
// Applies default values for StatementTimeout, Logger, and Metrics.
func NewRunner(cfg RunnerConfig) *Runner {
	cfg.applyDefaults()
	return &Runner{config: cfg}
}

// RunPending validates the tenant and executes every registered migration not
// yet in the tenant's ledger, in registry order, recording a ledger entry
// after each success. Returns the number of migrations applied.
//
// Sequencing is strict: a later version never runs before an earlier one has
// succeeded and been ledgered. On failure the run stops and a *MigrationError
// identifying the failing version propagates; the failed version stays
// pending and is re-attempted on the next run.
func (r *Runner) RunPending(ctx context.Context, identifier string) (int, error) {
	tenant, err := r.config.Tenants.Validate(ctx, identifier)
	if err != nil {
		return 0, err
	}

	entries, err := r.config.Ledger.Applied(ctx, tenant.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to query ledger for tenant %s: %w", tenant.ID, err)
	}

	executed := make(map[string]bool, len(entries))
	for _, e := range entries {
		executed[e.Version] = true
	}

	applied := 0
	for _, m := range r.config.Registry.List() {
		if executed[m.Version] {
			continue
		}

		r.config.Logger.Info("applying migration",
			zap.String("tenant_id", tenant.ID),
			zap.String("schema", tenant.Schema.String()),
			zap.String("version", m.Version),
			zap.String("name", m.Name))

		start := time.Now()
		if err := r.execAction(ctx, m.Up, tenant.Schema); err != nil {
			r.config.Metrics.IncMigrationFailures(m.Version)
			r.config.Logger.Error("migration failed",
				zap.String("tenant_id", tenant.ID),
				zap.String("version", m.Version),
				zap.Error(err))
			return applied, &schemafleet.MigrationError{TenantID: tenant.ID, Version: m.Version, Err: err}
		}
		r.config.Metrics.ObserveMigrationDuration(m.Version, time.Since(start))

		if err := r.config.Ledger.Record(ctx, tenant.ID, m.Version); err != nil {
			return applied, fmt.Errorf("failed to record migration %s for tenant %s: %w",
				m.Version, tenant.ID, err)
		}

		r.config.Metrics.IncMigrationsApplied(m.Version)
		applied++
	}

	if applied == 0 {
		r.config.Logger.Debug("tenant schema up to date",
			zap.String("tenant_id", tenant.ID),
			zap.Int("total", r.config.Registry.Len()))
	}

	return applied, nil
}

// execAction runs a single forward or reverse action under the configured
// statement timeout.
func (r *Runner) execAction(ctx context.Context, fn schemafleet.MigrateFunc, schema schemafleet.SchemaName) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	actionCtx, cancel := context.WithTimeout(ctx, r.config.StatementTimeout)
	defer cancel()

	return fn(actionCtx, schema, r.config.Executor)
}
