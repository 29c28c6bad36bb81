package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benpsk/items-service/internal/config"
	"github.com/benpsk/items-service/internal/metrics"
	"github.com/benpsk/items-service/internal/postgres"
	"github.com/benpsk/items-service/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.Printf("config: env=%s addr=%s db=%s:%s/%s max_conns=%d", cfg.AppEnv, cfg.HTTPAddr,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.MaxConns)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer db.Close()

	store := postgres.NewItemStore(db)
	if err := store.Initialize(ctx); err != nil {
		db.Close()
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Println("Database initialized")

	r := server.NewRouter(cfg, store, metrics.New())
	srv := server.New(cfg, r)

	log.Printf("Server running on %s", listenURL(cfg.HTTPAddr))
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func listenURL(addr string) string {
	listen := addr
	if strings.HasPrefix(listen, ":") {
		listen = "0.0.0.0" + listen
	}
	if !strings.Contains(listen, "://") {
		listen = "http://" + listen
	}
	return listen
}
