package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/benpsk/items-service/internal/config"
	"github.com/benpsk/items-service/internal/item"
	"github.com/benpsk/items-service/internal/metrics"
	webstatic "github.com/benpsk/items-service/static"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg config.Config, store item.Store, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	// Metrics sit outside Recoverer so a recovered panic is counted as 500.
	r.Use(m.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	staticFS := webstatic.FileSystem()
	if _, err := os.Stat("static"); err == nil && cfg.Debug {
		staticFS = http.Dir("static")
	}

	h := newHandler(item.NewService(store), strings.TrimSpace(cfg.AppName), strings.TrimSpace(cfg.Version), cfg.Debug)
	limitWrites := newWriteRateLimiter(cfg.WriteRateLimit.Requests, cfg.WriteRateLimit.Window).limitByIP("items_write")

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticFS)))
	r.Get("/", h.root)
	r.Get("/docs", h.docs)
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/app", h.appPage)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.With(limitWrites).Post("/", h.createItem)
		r.With(limitWrites).Delete("/{id}", h.deleteItem)
	})

	if cfg.Debug {
		r.Mount("/debug", middleware.Profiler())
	}

	return r
}
