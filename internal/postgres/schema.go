package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetSchema drops and recreates the public schema, removing all objects.
// Callers must re-run ItemStore.Initialize afterwards.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset schema: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck - safe to ignore rollback errors

	statements := []string{
		`drop schema if exists public cascade`,
		`create schema public`,
		`grant all on schema public to public`,
		`grant all on schema public to current_user`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("reset schema (%s): %w", stmt, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reset schema: %w", err)
	}
	return nil
}
