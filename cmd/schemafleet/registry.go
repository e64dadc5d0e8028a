package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/getpup/schemafleet"
)

// Migration files are named <version>_<name>.up.sql with an optional matching
// <version>_<name>.down.sql. The token {{schema}} in the SQL is replaced with
// the tenant's validated schema name before execution.
var migrationFileRegex = regexp.MustCompile(`^([^_]+)_(.+)\.up\.sql$`)

const schemaToken = "{{schema}}"

func sqlAction(sqlText string) schemafleet.MigrateFunc {
	return func(ctx context.Context, schema schemafleet.SchemaName, exec schemafleet.StatementExecutor) error {
		if err := schema.Validate(); err != nil {
			return err
		}
		stmt := strings.ReplaceAll(sqlText, schemaToken, schema.String())
		_, err := exec.ExecContext(ctx, stmt)
		return err
	}
}

// loadRegistry builds a migration registry from a directory of SQL files.
func loadRegistry(dir string) (*schemafleet.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	registry := schemafleet.NewRegistry()
	for _, name := range names {
		m := migrationFileRegex.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		version, label := m[1], m[2]

		upSQL, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		migration := schemafleet.Migration{
			Version: version,
			Name:    label,
			Up:      sqlAction(string(upSQL)),
		}

		downName := fmt.Sprintf("%s_%s.down.sql", version, label)
		downSQL, err := os.ReadFile(filepath.Join(dir, downName))
		if err == nil {
			migration.Down = sqlAction(string(downSQL))
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", downName, err)
		}

		if err := registry.Register(migration); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", name, err)
		}
	}

	registry.Freeze()
	return registry, nil
}
