/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging (logging.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the dashboard frontend
  5. Auth:       /api routes only; resolves the calling user

ROUTE GROUPS:
  /api/dashboard        Earnings dashboard
  /api/settings         User settings
  /api/holidays/*       Holiday calendar and custom holidays
  /healthz              Liveness
  /metrics              Prometheus metrics
  /*                    Static files (frontend), when StaticDir exists

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/warp/earnings-engine/auth"
	"github.com/warp/earnings-engine/logging"
	"github.com/warp/earnings-engine/metrics"
)

// RouterConfig holds router-level options.
type RouterConfig struct {
	CORSOrigins []string
	StaticDir   string
	Auth        *auth.Middleware
	Log         *zap.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !containsWildcard(origins),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Auth.Wrap)

		r.Get("/dashboard", h.GetDashboard)

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Post("/", h.UpdateSettings)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})
	})

	// Serve static files (frontend) when present
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			staticDir := cfg.StaticDir
			fileServer := http.FileServer(http.Dir(staticDir))
			r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
				fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
				if _, err := os.Stat(fullPath); os.IsNotExist(err) {
					// SPA routing: serve index.html
					http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
					return
				}
				fileServer.ServeHTTP(w, r)
			})
		}
	}

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
