package schemafleet

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the ordered catalog of migration definitions. It is populated
// once at process startup via Register calls and then frozen; runners, the
// rollback coordinator, and the status reporter all read from the same
// registry instance.
//
// Ordering contract: versions are compared with plain lexicographic string
// comparison, and the ledger assumes the same ordering. Authors must zero-pad
// numeric segments ("v1.02.0", not "v1.2.0") if they need more than nine
// releases per segment; "v1.10.0" sorts before "v1.2.0" lexicographically.
type Registry struct {
	mu         sync.RWMutex
	migrations []Migration
	frozen     bool
}

// NewRegistry creates an empty migration registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a migration definition to the registry and re-sorts by
// version, so execution order is independent of registration order.
// Returns ErrRegistryFrozen after Freeze has been called and
// ErrDuplicateVersion if the version is already registered.
func (r *Registry) Register(m Migration) error {
	if m.Version == "" {
		return fmt.Errorf("migration version cannot be empty")
	}
	if m.Up == nil {
		return fmt.Errorf("migration %s has no forward action", m.Version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", m.Version, ErrRegistryFrozen)
	}
	for _, existing := range r.migrations {
		if existing.Version == m.Version {
			return fmt.Errorf("register %s: %w", m.Version, ErrDuplicateVersion)
		}
	}

	r.migrations = append(r.migrations, m)
	sort.Slice(r.migrations, func(i, j int) bool {
		return r.migrations[i].Version < r.migrations[j].Version
	})

	return nil
}

// Freeze marks the registry read-only. Call it after startup registration is
// complete, before any runner is started.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// List returns all registered migrations sorted by version. The returned
// slice is a copy; callers may not mutate registered definitions.
func (r *Registry) List() []Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

// Get returns the migration registered under the given version.
// Returns ErrUnknownVersion if no such migration exists.
func (r *Registry) Get(version string) (Migration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.migrations {
		if m.Version == version {
			return m, nil
		}
	}
	return Migration{}, fmt.Errorf("get %s: %w", version, ErrUnknownVersion)
}

// Len returns the number of registered migrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.migrations)
}
