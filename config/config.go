package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/warp/earnings-engine/logging"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	DataBackend string `envconfig:"DATA_BACKEND" default:"sqlite"` // memory|sqlite|postgres
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/earnings.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	DevUserID string `envconfig:"DEV_USER_ID"`

	SettingsCacheTTL    time.Duration `envconfig:"SETTINGS_CACHE_TTL" default:"5m"`
	SettingsTimeout     time.Duration `envconfig:"SETTINGS_TIMEOUT" default:"3s"`
	HolidaySyncInterval time.Duration `envconfig:"HOLIDAY_SYNC_INTERVAL" default:"1m"` // 0 disables

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	StaticDir   string   `envconfig:"STATIC_DIR" default:"./public"`
}

// Load reads an optional .env file, then environment variables into Config.
// Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks backend-specific requirements.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.DataBackend) {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend))
	}

	if c.JWTSecret == "" && c.DevUserID == "" {
		errs = append(errs, errors.New("one of JWT_SECRET or DEV_USER_ID is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.SettingsTimeout <= 0 {
		errs = append(errs, errors.New("SETTINGS_TIMEOUT must be positive"))
	}
	if c.HolidaySyncInterval < 0 {
		errs = append(errs, errors.New("HOLIDAY_SYNC_INTERVAL must not be negative"))
	}
	if c.SettingsCacheTTL < 0 {
		errs = append(errs, errors.New("SETTINGS_CACHE_TTL must not be negative"))
	}

	return errors.Join(errs...)
}
