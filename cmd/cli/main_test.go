package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	dbembed "github.com/benpsk/items-service/db"
)

func TestShouldUseEmbedded(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "seed.sql")
	if err := os.WriteFile(file, []byte("select 1"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	missingDefault := filepath.Join(dir, "db", "seeders")

	tests := []struct {
		name    string
		path    string
		want    bool
		wantErr bool
	}{
		{name: "empty path", path: "", want: true},
		{name: "existing dir", path: dir, want: false},
		{name: "missing default", path: missingDefault, want: true},
		{name: "missing custom", path: filepath.Join(dir, "nope"), wantErr: true},
		{name: "file not dir", path: file, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shouldUseEmbedded(tt.path, missingDefault)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("shouldUseEmbedded(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestDumpArgsScopesToItemsTable(t *testing.T) {
	t.Parallel()

	args := dumpArgs("postgres://x", "out.sql", true, false)
	if !slices.Contains(args, "--schema-only") || slices.Contains(args, "--data-only") {
		t.Fatalf("unexpected mode flags: %v", args)
	}
	i := slices.Index(args, "--table")
	if i < 0 || args[i+1] != "items" {
		t.Fatalf("expected --table items, got %v", args)
	}
}

func TestEmbeddedSeedersPresent(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(dbembed.Seeders, "seeders")
	if err != nil {
		t.Fatalf("read embedded seeders: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one embedded seeder")
	}
}
