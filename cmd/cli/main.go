package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	dbembed "github.com/benpsk/items-service/db"
	"github.com/benpsk/items-service/internal/config"
	"github.com/benpsk/items-service/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultSeedersDir = "db/seeders"

const usage = "usage: %s [init|seed|fresh|dump] [options]"

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) < 2 {
		log.Fatalf(usage, os.Args[0])
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "seed":
		runSeed(os.Args[2:])
	case "fresh":
		runFresh(os.Args[2:])
	case "dump":
		runDump(os.Args[2:])
	default:
		log.Fatalf(usage, os.Args[0])
	}
}

func runInit(args []string) {
	flags := flag.NewFlagSet("init", flag.ExitOnError)
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := mustLoadConfig()
	pool := mustConnect(ctx, cfg)
	defer pool.Close()

	if err := postgres.NewItemStore(pool).Initialize(ctx); err != nil {
		log.Fatalf("init: %v", err)
	}
	log.Println("init: items table ready")
}

func runSeed(args []string) {
	flags := flag.NewFlagSet("seed", flag.ExitOnError)
	seedersDir := flags.String("path", defaultSeedersDir, "directory containing .sql seeders (overrides embedded bundle)")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := mustLoadConfig()
	pool := mustConnect(ctx, cfg)
	defer pool.Close()

	applied, err := seedItems(ctx, pool, *seedersDir)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if len(applied) == 0 {
		log.Println("seed: no seeders applied")
		return
	}
	for _, name := range applied {
		log.Printf("seed: applied %s", name)
	}
}

func runFresh(args []string) {
	flags := flag.NewFlagSet("fresh", flag.ExitOnError)
	seed := flags.Bool("seed", false, "apply seed files after recreating the schema")
	seedersDir := flags.String("seed-path", defaultSeedersDir, "directory containing .sql seeders (overrides embedded bundle)")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := mustLoadConfig()
	if cfg.AppEnv != "development" {
		log.Fatalf("fresh: APP_ENV must be development (got %q)", cfg.AppEnv)
	}

	pool := mustConnect(ctx, cfg)
	defer pool.Close()

	if err := postgres.ResetSchema(ctx, pool); err != nil {
		log.Fatalf("fresh: %v", err)
	}
	if err := postgres.NewItemStore(pool).Initialize(ctx); err != nil {
		log.Fatalf("fresh: %v", err)
	}
	log.Println("fresh: schema recreated")

	if !*seed {
		return
	}
	seeded, err := seedItems(ctx, pool, *seedersDir)
	if err != nil {
		log.Fatalf("fresh: %v", err)
	}
	for _, name := range seeded {
		log.Printf("fresh: applied seed %s", name)
	}
}

func runDump(args []string) {
	flags := flag.NewFlagSet("dump", flag.ExitOnError)
	out := flags.String("out", defaultDumpPath(), "output file path")
	schemaOnly := flags.Bool("schema-only", false, "dump schema only")
	dataOnly := flags.Bool("data-only", false, "dump data only")
	binary := flags.String("pg-dump-bin", "pg_dump", "pg_dump binary path")
	_ = flags.Parse(args)

	if *schemaOnly && *dataOnly {
		log.Fatal("dump: choose only one of -schema-only or -data-only")
	}

	cfg := mustLoadConfig()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("dump: mkdir output dir: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, *binary, dumpArgs(cfg.Database.DSN(), *out, *schemaOnly, *dataOnly)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Printf("dump: running %s -> %s", *binary, *out)
	if err := cmd.Run(); err != nil {
		log.Fatalf("dump: %v", err)
	}
	fmt.Printf("dump written: %s\n", *out)
}

func dumpArgs(dsn, out string, schemaOnly, dataOnly bool) []string {
	args := []string{
		"--dbname", dsn,
		"--format=plain",
		"--no-owner",
		"--no-privileges",
		"--table", "items",
		"--file", out,
	}
	if schemaOnly {
		args = append(args, "--schema-only")
	}
	if dataOnly {
		args = append(args, "--data-only")
	}
	return args
}

// seedItems makes sure the items table exists before any seeder touches it.
func seedItems(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	if err := postgres.NewItemStore(pool).Initialize(ctx); err != nil {
		return nil, err
	}
	if err := postgres.EnsureSeedTable(ctx, pool); err != nil {
		return nil, err
	}

	useEmbedded, err := shouldUseEmbedded(dir, defaultSeedersDir)
	if err != nil {
		return nil, err
	}
	if !useEmbedded {
		return postgres.Seed(ctx, pool, dir)
	}
	seedersFS, err := fs.Sub(dbembed.Seeders, "seeders")
	if err != nil {
		return nil, err
	}
	return postgres.SeedFS(ctx, pool, seedersFS)
}

func mustLoadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func mustConnect(ctx context.Context, cfg config.Config) *pgxpool.Pool {
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	return pool
}

func defaultDumpPath() string {
	return filepath.Join("tmp", "dump-"+time.Now().Format("20060102-150405")+".sql")
}

func shouldUseEmbedded(path, defaultPath string) (bool, error) {
	if path == "" {
		return true, nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("path %q is not a directory", path)
		}
		return false, nil
	case errors.Is(err, os.ErrNotExist):
		if path == defaultPath {
			return true, nil
		}
		return false, fmt.Errorf("path %q not found", path)
	default:
		return false, fmt.Errorf("stat path %q: %w", path, err)
	}
}
