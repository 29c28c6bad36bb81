package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/benpsk/items-service/internal/config"
	"github.com/benpsk/items-service/internal/testenv"
	"github.com/jackc/pgx/v5/pgxpool"
)

var integrationPool *pgxpool.Pool

func TestMain(m *testing.M) {
	found, err := testenv.LoadIfPresent()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !found {
		os.Exit(m.Run())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	unlock, err := testenv.LockIntegrationDB(ctx, pool, 7202602)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := NewItemStore(pool).Initialize(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	integrationPool = pool
	code := m.Run()
	unlock()
	pool.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if integrationPool == nil {
		t.Skip("integration database not configured (.env.test not found)")
	}
}

// withTx returns a context whose store calls run inside a transaction that is
// rolled back by the returned cleanup.
func withTx(t *testing.T) (context.Context, func()) {
	t.Helper()
	requireDB(t)

	ctx := context.Background()
	tx, err := integrationPool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	if _, err := tx.Exec(ctx, `delete from items`); err != nil {
		_ = tx.Rollback(ctx)
		t.Fatalf("clear items: %v", err)
	}
	return WithDBTX(ctx, tx), func() {
		_ = tx.Rollback(ctx)
	}
}
