package engine

import (
	"context"
	"fmt"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/store"
)

// StatusReporter diffs the migration registry against the ledger to report
// executed and pending versions for a tenant.
type StatusReporter struct {
	registry *schemafleet.Registry
	tenants  *TenantRegistry
	ledger   store.LedgerStore
}

// NewStatusReporter creates a new StatusReporter.
func NewStatusReporter(registry *schemafleet.Registry, tenants *TenantRegistry, ledger store.LedgerStore) *StatusReporter {
	return &StatusReporter{
		registry: registry,
		tenants:  tenants,
		ledger:   ledger,
	}
}

// Status reports migration state for the tenant. It is a pure function of
// the registry and the ledger: every registered version lands in exactly one
// of Executed or Pending, so len(Executed)+len(Pending) == Total always
// holds. Ledger rows for versions no longer registered are ignored.
func (s *StatusReporter) Status(ctx context.Context, identifier string) (schemafleet.StatusReport, error) {
	tenant, err := s.tenants.Resolve(ctx, identifier)
	if err != nil {
		return schemafleet.StatusReport{}, err
	}

	entries, err := s.ledger.Applied(ctx, tenant.ID)
	if err != nil {
		return schemafleet.StatusReport{}, fmt.Errorf("failed to query ledger for tenant %s: %w", tenant.ID, err)
	}

	ledgered := make(map[string]bool, len(entries))
	for _, e := range entries {
		ledgered[e.Version] = true
	}

	report := schemafleet.StatusReport{
		TenantID: tenant.ID,
		Executed: []string{},
		Pending:  []string{},
	}
	for _, m := range s.registry.List() {
		if ledgered[m.Version] {
			report.Executed = append(report.Executed, m.Version)
		} else {
			report.Pending = append(report.Pending, m.Version)
		}
		report.Total++
	}

	return report, nil
}
