/*
Package postgres provides a PostgreSQL-backed implementation of the storage
interfaces, for deployments that share one database across instances.

INTERFACES IMPLEMENTED:
  settings.Store: Get / Save per user
  holiday.Store:  SaveHoliday / DeleteHoliday / ListHolidays

NUMERICS:
  Money and rates use NUMERIC columns. Values travel as text in both
  directions so no precision is lost to float conversion.

CONCURRENCY:
  pgxpool handles connection pooling; the database handles isolation.

SEE ALSO:
  - store/sqlite: single-node backend with versioned migrations
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user_id TEXT PRIMARY KEY,
	manday_rate NUMERIC NOT NULL,
	currency TEXT NOT NULL,
	vat_rate NUMERIC NOT NULL,
	country TEXT NOT NULL,
	time_zone TEXT NOT NULL,
	work_hours_start TEXT NOT NULL,
	work_hours_end TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS holidays (
	id TEXT PRIMARY KEY,
	country TEXT NOT NULL,
	date DATE NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'public',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_holidays_country_date ON holidays(country, date);
`

// Store implements settings.Store and holiday.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) Save(ctx context.Context, userID string, us settings.UserSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, manday_rate, currency, vat_rate, country,
			time_zone, work_hours_start, work_hours_end)
		VALUES ($1, $2::numeric, $3, $4::numeric, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			manday_rate = excluded.manday_rate,
			currency = excluded.currency,
			vat_rate = excluded.vat_rate,
			country = excluded.country,
			time_zone = excluded.time_zone,
			work_hours_start = excluded.work_hours_start,
			work_hours_end = excluded.work_hours_end,
			updated_at = now()`,
		userID, us.MandayRate.String(), us.Currency, us.VATRate.String(), us.Country,
		us.TimeZone, us.WorkHoursStart.String(), us.WorkHoursEnd.String(),
	)
	return err
}

func (s *Store) Get(ctx context.Context, userID string) (settings.UserSettings, error) {
	var rate, vat, start, end string
	var us settings.UserSettings

	err := s.pool.QueryRow(ctx, `
		SELECT manday_rate::text, currency, vat_rate::text, country, time_zone,
			work_hours_start, work_hours_end
		FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(&rate, &us.Currency, &vat, &us.Country, &us.TimeZone, &start, &end)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings.UserSettings{}, settings.ErrNotFound
	}
	if err != nil {
		return settings.UserSettings{}, err
	}

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
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h holiday.Holiday) error {
	typ := h.Type
	if typ == "" {
		typ = holiday.TypePublic
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO holidays (id, country, date, name, type)
		VALUES ($1, $2, $3::date, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			country = excluded.country,
			date = excluded.date,
			name = excluded.name,
			type = excluded.type`,
		h.ID, holiday.NormalizeCountry(h.Country), h.Date.Format("2006-01-02"), h.Name, string(typ),
	)
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, country string) ([]holiday.Holiday, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, country, to_char(date, 'YYYY-MM-DD'), name, type
		FROM holidays
		WHERE $1::text = '' OR country = $1
		ORDER BY date ASC, id ASC`,
		holiday.NormalizeCountry(country),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		var date, typ string
		if err := rows.Scan(&h.ID, &h.Country, &date, &h.Name, &typ); err != nil {
			return nil, err
		}
		if h.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("decode holiday %s date: %w", h.ID, err)
		}
		h.Type = holiday.Type(typ)
		h.Custom = true
		out = append(out, h)
	}
	return out, rows.Err()
}

// Reset truncates all tables (for testing).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE user_settings, holidays`)
	return err
}
