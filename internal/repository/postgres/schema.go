package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements returns the DDL for the submission ledger.
// Statements are idempotent so EnsureSchema can run on every boot.
func schemaStatements(tables *TableNames) []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id             UUID PRIMARY KEY,
				user_id        TEXT NOT NULL,
				category       TEXT NOT NULL,
				title          TEXT NOT NULL,
				issue_number   INTEGER NOT NULL,
				issue_url      TEXT NOT NULL,
				screenshot_url TEXT,
				created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Submissions),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_user_created_idx
			ON %s (user_id, created_at DESC)
		`, tables.Submissions, tables.Submissions),
	}
}

// EnsureSchema creates the ledger table and its index if they are missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, stmt := range schemaStatements(tables) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
