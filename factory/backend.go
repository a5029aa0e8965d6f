/*
Package factory builds storage backends from configuration.

PURPOSE:
  Turns the DATA_BACKEND setting into a concrete store that serves both
  settings.Store and holiday.Store, so main and tests never switch on
  backend names themselves.

BACKENDS:
  memory:   process memory, lost on restart (tests, demos)
  sqlite:   single file, versioned migrations (single instance)
  postgres: shared database (several instances behind a load balancer)

USAGE:
  backend, err := factory.NewBackend(ctx, cfg)
  if err != nil {
      log.Fatal(err)
  }
  defer backend.Close()

SEE ALSO:
  - config/config.go: DATA_BACKEND and friends
  - store/: backend implementations
*/
package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/earnings-engine/config"
	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
	"github.com/warp/earnings-engine/store/memory"
	"github.com/warp/earnings-engine/store/postgres"
	"github.com/warp/earnings-engine/store/sqlite"
)

// Backend is a store serving settings and custom holidays.
type Backend interface {
	settings.Store
	holiday.Store
	Close() error
}

// NewBackend opens the backend named by cfg.DataBackend.
func NewBackend(ctx context.Context, cfg config.Config) (Backend, error) {
	switch strings.ToLower(cfg.DataBackend) {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
	}
}
