package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/benpsk/items-service/internal/config"
	"github.com/benpsk/items-service/internal/item"
)

func TestItemStoreInitializeIsIdempotent(t *testing.T) {
	ctx, cleanup := withTx(t)
	defer cleanup()

	store := NewItemStore(integrationPool)
	for i := 0; i < 2; i++ {
		if err := store.Initialize(ctx); err != nil {
			t.Fatalf("initialize #%d: %v", i+1, err)
		}
	}
}

func TestItemStoreListEmpty(t *testing.T) {
	ctx, cleanup := withTx(t)
	defer cleanup()

	items, err := NewItemStore(integrationPool).List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestItemServiceCreateAndList(t *testing.T) {
	ctx, cleanup := withTx(t)
	defer cleanup()

	service := item.NewService(NewItemStore(integrationPool))

	name := "  first item  "
	desc := "  described  "
	first, err := service.Create(ctx, item.CreateInput{Name: &name, Description: &desc})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if first.Name != "first item" {
		t.Fatalf("expected trimmed name, got %q", first.Name)
	}
	if first.Description == nil || *first.Description != "described" {
		t.Fatalf("expected trimmed description, got %v", first.Description)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	second := "second"
	created, err := service.Create(ctx, item.CreateInput{Name: &second})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if created.Description != nil {
		t.Fatalf("expected null description, got %q", *created.Description)
	}
	if created.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d after %d", created.ID, first.ID)
	}

	items, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Both rows share now() inside the transaction, so id breaks the tie.
	if items[0].ID != created.ID {
		t.Fatalf("expected newest item first, got id=%d want=%d", items[0].ID, created.ID)
	}
}

func TestItemStoreDeleteOnce(t *testing.T) {
	ctx, cleanup := withTx(t)
	defer cleanup()

	store := NewItemStore(integrationPool)
	created, err := store.Create(ctx, "Widget", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err := store.Delete(ctx, created.ID)
	if err != nil || !removed {
		t.Fatalf("first delete: removed=%v err=%v", removed, err)
	}
	removed, err = store.Delete(ctx, created.ID)
	if err != nil || removed {
		t.Fatalf("second delete: removed=%v err=%v", removed, err)
	}
}

func TestItemStoreCreateConstraintViolationIsStorageError(t *testing.T) {
	ctx, cleanup := withTx(t)
	defer cleanup()

	_, err := NewItemStore(integrationPool).Create(ctx, strings.Repeat("x", item.MaxNameLength+1), nil)
	if !errors.Is(err, item.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "sqlstate 22001") {
		t.Fatalf("expected sqlstate in error, got %v", err)
	}
}

func TestItemStoreCheckHealth(t *testing.T) {
	requireDB(t)

	if !NewItemStore(integrationPool).CheckHealth(context.Background()) {
		t.Fatalf("expected healthy store")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	pool, err := Connect(context.Background(), cfg.Database)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	pool.Close()

	store := NewItemStore(pool)
	if store.CheckHealth(context.Background()) {
		t.Fatalf("expected closed pool to report unhealthy")
	}
	if _, err := store.List(context.Background()); !errors.Is(err, item.ErrStorage) {
		t.Fatalf("expected storage error from closed pool, got %v", err)
	}
}

func TestConnectUnreachableIsStorageUnavailable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := Connect(ctx, config.DatabaseConfig{URL: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"})
	if !errors.Is(err, item.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
