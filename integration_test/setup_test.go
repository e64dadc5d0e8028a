//go:build integration

package integration_test

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"

	pgstore "github.com/getpup/schemafleet/store/postgres"
)

// getTestDB returns a database connection for integration tests.
// It reads the DATABASE_URL environment variable and skips the test if not set.
func getTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	return db
}

// setupTables creates the tenant control tables using the default configuration.
func setupTables(t *testing.T, db *sql.DB) {
	t.Helper()

	config := pgstore.DefaultTableConfig()
	migrationSQL := pgstore.MigrationUp(config)

	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
}

// cleanupTables truncates the control tables and drops tenant schemas created
// during the test. Errors are logged but don't fail the test (cleanup is
// best-effort).
func cleanupTables(t *testing.T, db *sql.DB) {
	t.Helper()

	config := pgstore.DefaultTableConfig()

	// Drop per-tenant schemas before removing the rows that track them
	rows, err := db.Query("SELECT schema_name FROM " + config.TenantsTable)
	if err != nil {
		t.Logf("warning: failed to list tenant schemas: %v", err)
	} else {
		defer rows.Close()
		for rows.Next() {
			var schema string
			if err := rows.Scan(&schema); err != nil {
				continue
			}
			if _, err := db.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE"); err != nil {
				t.Logf("warning: failed to drop schema %s: %v", schema, err)
			}
		}
	}

	// TRUNCATE ledger table first (has foreign key to tenants)
	if _, err := db.Exec("TRUNCATE " + config.LedgerTable + " CASCADE"); err != nil {
		t.Logf("warning: failed to truncate ledger table: %v", err)
	}

	if _, err := db.Exec("TRUNCATE " + config.TenantsTable + " CASCADE"); err != nil {
		t.Logf("warning: failed to truncate tenants table: %v", err)
	}
}

// teardownTables drops the control tables using the default configuration.
// Errors are logged but don't fail the test.
func teardownTables(t *testing.T, db *sql.DB) {
	t.Helper()

	config := pgstore.DefaultTableConfig()
	migrationSQL := pgstore.MigrationDown(config)

	if _, err := db.Exec(migrationSQL); err != nil {
		t.Logf("warning: failed to drop tables: %v", err)
	}
}
