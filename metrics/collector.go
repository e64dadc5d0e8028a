package metrics

import "time"

// Collector wraps metrics and provides helper methods for the engine
// components. The zero value is usable.
type Collector struct{}

// NewCollector creates a new Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncTenantsProvisioned increments the tenants provisioned counter.
func (c *Collector) IncTenantsProvisioned() {
	TenantsProvisionedTotal.Inc()
}

// IncMigrationsApplied increments the migrations applied counter for a version.
func (c *Collector) IncMigrationsApplied(version string) {
	MigrationsAppliedTotal.WithLabelValues(version).Inc()
}

// IncMigrationFailures increments the migration failures counter for a version.
func (c *Collector) IncMigrationFailures(version string) {
	MigrationFailuresTotal.WithLabelValues(version).Inc()
}

// IncRollbacks increments the rollbacks counter for a version.
func (c *Collector) IncRollbacks(version string) {
	RollbacksTotal.WithLabelValues(version).Inc()
}

// IncFleetSweeps increments the fleet sweeps counter.
func (c *Collector) IncFleetSweeps() {
	FleetSweepsTotal.Inc()
}

// SetFleetTenantFailures sets the fleet tenant failures gauge.
func (c *Collector) SetFleetTenantFailures(count int) {
	FleetTenantFailures.Set(float64(count))
}

// ObserveMigrationDuration records a forward-action duration observation.
func (c *Collector) ObserveMigrationDuration(version string, d time.Duration) {
	MigrationDuration.WithLabelValues(version).Observe(d.Seconds())
}
