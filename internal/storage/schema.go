package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current ledger schema version.
const SchemaVersion = 1

func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	stmts := []string{
		// Single row (id = 1) holding the deployment record and aggregate counters.
		`CREATE TABLE IF NOT EXISTS contract (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			owner TEXT NOT NULL,
			treasury INTEGER NOT NULL DEFAULT 0,
			next_token_id INTEGER NOT NULL DEFAULT 0,
			total_minted INTEGER NOT NULL DEFAULT 0,
			total_evolved INTEGER NOT NULL DEFAULT 0,
			deployed_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tokens (
			id INTEGER PRIMARY KEY,
			owner TEXT NOT NULL,
			energy_level INTEGER NOT NULL,
			purity INTEGER NOT NULL CHECK (purity BETWEEN 0 AND 100),
			core_element INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			last_energized INTEGER NOT NULL,
			current_streak INTEGER NOT NULL DEFAULT 0,
			evolved INTEGER NOT NULL DEFAULT 0,
			creation_time INTEGER NOT NULL
		);`,
		// Trait order is insertion order (id ascending).
		`CREATE TABLE IF NOT EXISTS token_traits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token_id INTEGER NOT NULL,
			trait TEXT NOT NULL,
			partner TEXT NOT NULL,
			infused_at INTEGER NOT NULL,
			FOREIGN KEY(token_id) REFERENCES tokens(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS partners (
			address TEXT PRIMARY KEY,
			whitelisted INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			token_id INTEGER NULL,
			payload TEXT NOT NULL,
			at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tokens_owner ON tokens(owner, id);`,
		`CREATE INDEX IF NOT EXISTS idx_token_traits_token_id ON token_traits(token_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_token_id ON events(token_id, id);`,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}
