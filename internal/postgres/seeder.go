package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSeedTable creates the bookkeeping table that tracks applied seeders.
func EnsureSeedTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		create table if not exists schema_seeders (
			name text primary key,
			applied_at timestamptz not null default now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_seeders: %w", err)
	}
	return nil
}

// Seed executes unapplied .sql files found in dir, ordered lexicographically.
func Seed(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("seeders directory %q not found", dir)
		}
		return nil, fmt.Errorf("read seeders dir: %w", err)
	}

	return seed(ctx, pool, os.DirFS(dir), entries)
}

// SeedFS executes seeders discovered in the provided filesystem.
func SeedFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read seeders fs: %w", err)
	}

	return seed(ctx, pool, fsys, entries)
}

func seed(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, entries []fs.DirEntry) ([]string, error) {
	var applied []string

	for _, name := range listSQLFiles(entries) {
		done, err := seedApplied(ctx, pool, name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}

		if err := runSeed(ctx, pool, name, strings.TrimSpace(string(contents))); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}

	return applied, nil
}

// runSeed executes statement and records name in one transaction. An empty
// statement is only recorded.
func runSeed(ctx context.Context, pool *pgxpool.Pool, name, statement string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed %s: %w", name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck - safe to ignore rollback errors

	if statement != "" {
		if _, err := tx.Exec(ctx, statement); err != nil {
			return fmt.Errorf("exec seed %s: %w", name, err)
		}
	}
	if err := recordSeedTx(ctx, tx, name); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed %s: %w", name, err)
	}
	return nil
}

func seedApplied(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `select exists (select 1 from schema_seeders where name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check seed %s: %w", name, err)
	}
	return exists, nil
}

func recordSeedTx(ctx context.Context, tx pgx.Tx, name string) error {
	if _, err := tx.Exec(ctx, `insert into schema_seeders (name) values ($1)`, name); err != nil {
		return fmt.Errorf("record seed %s: %w", name, err)
	}
	return nil
}

func listSQLFiles(entries []fs.DirEntry) []string {
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files
}
