// Package migrations generates bootstrap SQL files that create the engine's
// own control tables (tenants and the migration ledger) for PostgreSQL,
// MySQL, and SQLite.
package migrations
