package schemafleet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpup/schemafleet"
)

func noopUp(ctx context.Context, schema schemafleet.SchemaName, exec schemafleet.StatementExecutor) error {
	return nil
}

func TestRegistry_OrderIndependentOfRegistration(t *testing.T) {
	registry := schemafleet.NewRegistry()

	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.3.0", Name: "third", Up: noopUp}))
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.1.0", Name: "first", Up: noopUp}))
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.2.0", Name: "second", Up: noopUp}))

	versions := []string{}
	for _, m := range registry.List() {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []string{"v1.1.0", "v1.2.0", "v1.3.0"}, versions)
}

func TestRegistry_DuplicateVersionRejected(t *testing.T) {
	registry := schemafleet.NewRegistry()

	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.0.0", Up: noopUp}))
	err := registry.Register(schemafleet.Migration{Version: "v1.0.0", Up: noopUp})
	assert.ErrorIs(t, err, schemafleet.ErrDuplicateVersion)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_FrozenRejectsRegistration(t *testing.T) {
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.0.0", Up: noopUp}))

	registry.Freeze()

	err := registry.Register(schemafleet.Migration{Version: "v2.0.0", Up: noopUp})
	assert.ErrorIs(t, err, schemafleet.ErrRegistryFrozen)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_RejectsIncompleteMigrations(t *testing.T) {
	registry := schemafleet.NewRegistry()

	assert.Error(t, registry.Register(schemafleet.Migration{Version: "", Up: noopUp}))
	assert.Error(t, registry.Register(schemafleet.Migration{Version: "v1.0.0", Up: nil}))
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_Get(t *testing.T) {
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.0.0", Name: "init", Up: noopUp}))

	m, err := registry.Get("v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "init", m.Name)

	_, err = registry.Get("v9.9.9")
	assert.ErrorIs(t, err, schemafleet.ErrUnknownVersion)
}

func TestRegistry_LexicographicOrdering(t *testing.T) {
	// Ordering is lexicographic: v1.10.0 sorts before v1.2.0. Version schemes
	// with multi-digit components must zero-pad.
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.2.0", Up: noopUp}))
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.10.0", Up: noopUp}))

	migrations := registry.List()
	assert.Equal(t, "v1.10.0", migrations[0].Version)
	assert.Equal(t, "v1.2.0", migrations[1].Version)
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	registry := schemafleet.NewRegistry()
	require.NoError(t, registry.Register(schemafleet.Migration{Version: "v1.0.0", Up: noopUp}))

	list := registry.List()
	list[0].Version = "mutated"

	fresh := registry.List()
	assert.Equal(t, "v1.0.0", fresh[0].Version)
}
