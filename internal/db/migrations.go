package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/j-veylop/mise/internal/logger"
)

// migration upgrades the schema by one version inside a transaction.
type migration func(ctx context.Context, tx *sql.Tx) error

// execAll returns a migration that runs each statement in order.
func execAll(stmts ...string) migration {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

// migrations are applied in order; index i moves the schema to version i+1.
// Append only.
var migrations = []migration{
	execAll(
		`CREATE TABLE IF NOT EXISTS cooked_recipes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			recipe_json TEXT NOT NULL,
			cooked_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cooked_recipes_cooked_at ON cooked_recipes(cooked_at)`,
		`CREATE TABLE IF NOT EXISTS ai_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			label TEXT NOT NULL,
			model TEXT NOT NULL,
			key_index INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			duration_ms INTEGER DEFAULT 0,
			error TEXT,
			request_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_calls_timestamp ON ai_calls(timestamp)`,
		`CREATE TABLE IF NOT EXISTS pantry_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE,
			category TEXT NOT NULL,
			added_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pantry_items_expires ON pantry_items(expires_at)`,
	),
	execAll(`CREATE INDEX IF NOT EXISTS idx_ai_calls_model ON ai_calls(model, outcome)`),
}

// SchemaVersion returns the schema version recorded in the database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than the recorded schema version.
func (db *DB) migrate(ctx context.Context) error {
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, len(migrations))
	}

	for v := current; v < len(migrations); v++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", v+1, err)
		}
		if err := migrations[v](ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", v+1, err)
		}
		// PRAGMA does not accept bound parameters
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record schema version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", v+1, err)
		}
		logger.Debug("applied schema migration", "version", v+1)
	}

	return nil
}
