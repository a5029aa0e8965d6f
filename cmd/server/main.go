/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the earnings engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Build the zap logger
  3. Open the storage backend
  4. Load custom holidays and build the holiday calendar
  5. Create API handler, router and holiday sync
  6. Start server with graceful shutdown

ENVIRONMENT:
  HTTP_ADDR, LOG_LEVEL, DATA_BACKEND, SQLITE_PATH, DATABASE_URL,
  JWT_SECRET, DEV_USER_ID, SETTINGS_CACHE_TTL, SETTINGS_TIMEOUT,
  HOLIDAY_SYNC_INTERVAL, CORS_ORIGINS, STATIC_DIR
  See config/config.go for defaults.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop holiday sync, close the backend
  4. Exit

EXAMPLES:
  # Single user, file database
  DEV_USER_ID=me ./server

  # Shared Postgres with JWT identities
  DATA_BACKEND=postgres DATABASE_URL=postgres://... JWT_SECRET=... ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - factory/backend.go: Storage selection
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/earnings-engine/api"
	"github.com/warp/earnings-engine/auth"
	"github.com/warp/earnings-engine/config"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/logging"
	"github.com/warp/earnings-engine/metrics"
	"github.com/warp/earnings-engine/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	metrics.Init()

	// Initialize store
	ctx := context.Background()
	backend, err := factory.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.String("backend", cfg.DataBackend), zap.Error(err))
	}
	defer backend.Close()

	// Holiday calendar: national rules plus stored custom holidays
	custom := holiday.NewCustom()
	if err := custom.Load(ctx, backend); err != nil {
		log.Fatal("failed to load custom holidays", zap.Error(err))
	}
	calendar := holiday.NewMerged(holiday.NewRules(nil), custom)

	// Settings read path
	var settingsStore settings.Store = backend
	if cfg.SettingsCacheTTL > 0 {
		cached := settings.NewCachedStore(backend, cfg.SettingsCacheTTL)
		cached.OnHit = metrics.IncSettingsCacheHit
		cached.OnMiss = metrics.IncSettingsCacheMiss
		settingsStore = cached
	}

	handler := api.NewHandler(settingsStore, backend, calendar, log)
	handler.Timeout = cfg.SettingsTimeout

	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
		Auth:        auth.NewMiddleware([]byte(cfg.JWTSecret), cfg.DevUserID),
		Log:         log,
	})

	sync := api.NewHolidaySyncScheduler(backend, custom, log)
	sync.CheckInterval = cfg.HolidaySyncInterval
	sync.Enabled = cfg.HolidaySyncInterval > 0
	sync.Start()
	defer sync.Stop()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("backend", cfg.DataBackend),
			zap.Strings("countries", calendar.Rules.Countries()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
