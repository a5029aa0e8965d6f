/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists user settings and runtime-managed holidays. The calculation core
  never touches the database: settings are read once per request (through
  settings.CachedStore) and holidays are mirrored into holiday.Custom.

INTERFACES IMPLEMENTED:
  settings.Store: Get / Save per user
  holiday.Store:  SaveHoliday / DeleteHoliday / ListHolidays

KEY TABLES:
  user_settings: one row per user, decimals stored as text
  holidays:      custom public holidays keyed by id

MIGRATION:
  Schema is versioned under migrations/ and applied on New() with
  golang-migrate, reading the embedded SQL files.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are pinned to a
  single connection since every new connection would see an empty database.

USAGE:
  store, err := sqlite.New("./data/earnings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - settings/store.go: settings.Store interface
  - holiday/custom.go: holiday.Store interface
  - store/memory: in-memory implementation for tests and dev
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

// Store implements settings.Store and holiday.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if strings.Contains(dbPath, ":memory:") {
		dsn = dbPath
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrateUp applies pending migrations on db. The migrate instance is not
// closed: closing it would close db as well.
func migrateUp(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS STORE IMPLEMENTATION
// =============================================================================

// Save upserts the settings for userID.
func (s *Store) Save(ctx context.Context, userID string, us settings.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO user_settings (user_id, manday_rate, currency, vat_rate, country,
			time_zone, work_hours_start, work_hours_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			manday_rate = excluded.manday_rate,
			currency = excluded.currency,
			vat_rate = excluded.vat_rate,
			country = excluded.country,
			time_zone = excluded.time_zone,
			work_hours_start = excluded.work_hours_start,
			work_hours_end = excluded.work_hours_end,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		userID, us.MandayRate.String(), us.Currency, us.VATRate.String(), us.Country,
		us.TimeZone, us.WorkHoursStart.String(), us.WorkHoursEnd.String(), now, now,
	)
	return err
}

// Get returns the settings for userID, or settings.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID string) (settings.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rate, vat, start, end string
	var us settings.UserSettings

	err := s.db.QueryRowContext(ctx, `
		SELECT manday_rate, currency, vat_rate, country, time_zone, work_hours_start, work_hours_end
		FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(&rate, &us.Currency, &vat, &us.Country, &us.TimeZone, &start, &end)

	if errors.Is(err, sql.ErrNoRows) {
		return settings.UserSettings{}, settings.ErrNotFound
	}
	if err != nil {
		return settings.UserSettings{}, err
	}

	return decodeSettings(us, rate, vat, start, end)
}

// decodeSettings fills the text-encoded columns into us.
func decodeSettings(us settings.UserSettings, rate, vat, start, end string) (settings.UserSettings, error) {
	var err error
	if us.MandayRate, err = decimal.NewFromString(rate); err != nil {
		return settings.UserSettings{}, fmt.Errorf("decode manday_rate: %w", err)
	}
	if us.VATRate, err = decimal.NewFromString(vat); err != nil {
		return settings.UserSettings{}, fmt.Errorf("decode vat_rate: %w", err)
	}
	if us.WorkHoursStart, err = settings.ParseTimeOfDay(start); err != nil {
		return settings.UserSettings{}, fmt.Errorf("decode work_hours_start: %w", err)
	}
	if us.WorkHoursEnd, err = settings.ParseTimeOfDay(end); err != nil {
		return settings.UserSettings{}, fmt.Errorf("decode work_hours_end: %w", err)
	}
	return us, nil
}

// =============================================================================
// HOLIDAY STORE IMPLEMENTATION
// =============================================================================

// SaveHoliday upserts a custom holiday by ID.
func (s *Store) SaveHoliday(ctx context.Context, h holiday.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, country, date, name, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			country = excluded.country,
			date = excluded.date,
			name = excluded.name,
			type = excluded.type
	`

	typ := h.Type
	if typ == "" {
		typ = holiday.TypePublic
	}
	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		holiday.NormalizeCountry(h.Country),
		h.Date.Format(dateLayout),
		h.Name,
		string(typ),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

// ListHolidays returns custom holidays for country ordered by date; an empty
// country lists all of them.
func (s *Store) ListHolidays(ctx context.Context, country string) ([]holiday.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, country, date, name, type
		FROM holidays
		WHERE ? = '' OR country = ?
		ORDER BY date ASC, id ASC
	`

	country = holiday.NormalizeCountry(country)
	rows, err := s.db.QueryContext(ctx, query, country, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		var dateStr, typ string
		if err := rows.Scan(&h.ID, &h.Country, &dateStr, &h.Name, &typ); err != nil {
			return nil, err
		}
		h.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("decode holiday %s date: %w", h.ID, err)
		}
		h.Type = holiday.Type(typ)
		h.Custom = true
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

// Reset deletes all data (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"user_settings", "holidays"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
