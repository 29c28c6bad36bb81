package postgres

import (
	"context"
	"strconv"
	"testing"
	"testing/fstest"
	"time"
)

func TestSeedFSAppliesEachFileOnce(t *testing.T) {
	requireDB(t)

	ctx := context.Background()
	if err := EnsureSeedTable(ctx, integrationPool); err != nil {
		t.Fatalf("ensure seed table: %v", err)
	}

	suffix := strconv.FormatInt(time.Now().UnixNano(), 10)
	marker := "seeded-" + suffix
	fsys := fstest.MapFS{
		"900_" + suffix + "_items.sql": {Data: []byte(`insert into items (name) values ('` + marker + `')`)},
		"901_" + suffix + "_empty.sql": {Data: []byte("  \n")},
		"notes.txt":                    {Data: []byte("ignored")},
	}
	t.Cleanup(func() {
		_, _ = integrationPool.Exec(ctx, `delete from items where name = $1`, marker)
		_, _ = integrationPool.Exec(ctx, `delete from schema_seeders where name like $1`, "%"+suffix+"%")
	})

	applied, err := SeedFS(ctx, integrationPool, fsys)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected 2 applied seeders, got %v", applied)
	}

	again, err := SeedFS(ctx, integrationPool, fsys)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no seeders on second run, got %v", again)
	}

	var count int
	if err := integrationPool.QueryRow(ctx, `select count(*) from items where name = $1`, marker).Scan(&count); err != nil {
		t.Fatalf("count seeded rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected seeded row once, got %d", count)
	}
}
