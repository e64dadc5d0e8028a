package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/metrics"
	"github.com/getpup/schemafleet/store"
)

// RollbackConfig holds configuration for the RollbackCoordinator.
type RollbackConfig struct {
	// Registry is the migration catalog (required).
	Registry *schemafleet.Registry

	// Tenants resolves and validates tenant identifiers (required).
	Tenants *TenantRegistry

	// Ledger records which versions have executed per tenant (required).
	Ledger store.LedgerStore

	// Executor runs migration statements against the backing store (required).
	Executor schemafleet.StatementExecutor

	// StatementTimeout bounds each reverse action (default: 5m).
	StatementTimeout time.Duration

	// Logger is for observability (default: no-op).
	Logger *zap.Logger

	// Metrics collects rollback metrics (default: shared collector).
	Metrics *metrics.Collector
}

// RollbackCoordinator executes reverse actions and deletes the matching
// ledger entries. One version is rolled back per call; chained rollbacks
// require repeated calls.
type RollbackCoordinator struct {
	config RollbackConfig
}

// NewRollbackCoordinator creates a new RollbackCoordinator with the given
// configuration. Applies default values for StatementTimeout, Logger, and
// Metrics.
func NewRollbackCoordinator(cfg RollbackConfig) *RollbackCoordinator {
	if cfg.StatementTimeout == 0 {
		cfg.StatementTimeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewCollector()
	}

	return &RollbackCoordinator{config: cfg}
}

// Rollback undoes one ledgered migration for the tenant. An empty version
// selects the most recently executed one.
//
// Returns ErrNoMigrationsToRollback if the tenant's ledger is empty,
// ErrVersionNotApplied if the requested version is not ledgered, and a
// *RollbackUnsupportedError if the migration has no reverse action. On
// success the reverse action has executed against the tenant's schema and
// the ledger entry is deleted, returning the version to pending.
func (c *RollbackCoordinator) Rollback(ctx context.Context, identifier, version string) error {
	tenant, err := c.config.Tenants.Validate(ctx, identifier)
	if err != nil {
		return err
	}

	if version == "" {
		latest, err := c.config.Ledger.Latest(ctx, tenant.ID)
		if errors.Is(err, store.ErrLedgerEmpty) {
			return fmt.Errorf("tenant %s: %w", tenant.ID, schemafleet.ErrNoMigrationsToRollback)
		}
		if err != nil {
			return fmt.Errorf("failed to find latest migration for tenant %s: %w", tenant.ID, err)
		}
		version = latest.Version
	} else {
		entries, err := c.config.Ledger.Applied(ctx, tenant.ID)
		if err != nil {
			return fmt.Errorf("failed to query ledger for tenant %s: %w", tenant.ID, err)
		}
		found := false
		for _, e := range entries {
			if e.Version == version {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("tenant %s version %s: %w", tenant.ID, version, schemafleet.ErrVersionNotApplied)
		}
	}

	migration, err := c.config.Registry.Get(version)
	if err != nil {
		return err
	}
	if migration.Down == nil {
		return &schemafleet.RollbackUnsupportedError{Version: version}
	}

	c.config.Logger.Info("rolling back migration",
		zap.String("tenant_id", tenant.ID),
		zap.String("schema", tenant.Schema.String()),
		zap.String("version", version))

	if err := c.execAction(ctx, migration.Down, tenant.Schema); err != nil {
		c.config.Logger.Error("rollback failed",
			zap.String("tenant_id", tenant.ID),
			zap.String("version", version),
			zap.Error(err))
		return &schemafleet.MigrationError{TenantID: tenant.ID, Version: version, Err: err}
	}

	if err := c.config.Ledger.Remove(ctx, tenant.ID, version); err != nil {
		return fmt.Errorf("failed to remove ledger entry %s for tenant %s: %w",
			version, tenant.ID, err)
	}

	c.config.Metrics.IncRollbacks(version)
	return nil
}

func (c *RollbackCoordinator) execAction(ctx context.Context, fn schemafleet.MigrateFunc, schema schemafleet.SchemaName) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	actionCtx, cancel := context.WithTimeout(ctx, c.config.StatementTimeout)
	defer cancel()

	return fn(actionCtx, schema, c.config.Executor)
}
