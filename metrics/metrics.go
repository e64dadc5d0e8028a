package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TenantsProvisionedTotal tracks the total number of tenants provisioned.
var TenantsProvisionedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "schemafleet_tenants_provisioned_total",
		Help: "Total number of tenants provisioned",
	},
)

// MigrationsAppliedTotal tracks the total number of forward actions applied.
var MigrationsAppliedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "schemafleet_migrations_applied_total",
		Help: "Total migrations applied, by version",
	},
	[]string{"version"},
)

// MigrationFailuresTotal tracks the total number of failed forward actions.
var MigrationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "schemafleet_migration_failures_total",
		Help: "Total migration failures, by version",
	},
	[]string{"version"},
)

// RollbacksTotal tracks the total number of reverse actions executed.
var RollbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "schemafleet_rollbacks_total",
		Help: "Total rollbacks executed, by version",
	},
	[]string{"version"},
)

// FleetSweepsTotal tracks the total number of fleet-wide runs.
var FleetSweepsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "schemafleet_fleet_sweeps_total",
		Help: "Total fleet-wide migration sweeps",
	},
)

// FleetTenantFailures tracks the number of tenants that failed during the
// most recent fleet sweep.
var FleetTenantFailures = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "schemafleet_fleet_tenant_failures",
		Help: "Tenants that failed during the most recent fleet sweep",
	},
)

// MigrationDuration tracks forward-action execution durations.
var MigrationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "schemafleet_migration_duration_seconds",
		Help:    "Forward action execution duration in seconds, by version",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	},
	[]string{"version"},
)
