// Package storetest holds the behaviour every storage backend must share.
// Backend tests call Run with a constructor for a fresh, empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
)

// Backend is a combined settings and holiday store.
type Backend interface {
	settings.Store
	holiday.Store
}

// Sample returns valid settings for a Prague-based freelancer.
func Sample() settings.UserSettings {
	return settings.UserSettings{
		MandayRate:     decimal.RequireFromString("7600.50"),
		Currency:       "CZK",
		VATRate:        decimal.RequireFromString("0.21"),
		Country:        "CZ",
		TimeZone:       "Europe/Prague",
		WorkHoursStart: settings.NewTimeOfDay(9, 0),
		WorkHoursEnd:   settings.NewTimeOfDay(17, 30),
	}
}

// Run exercises newStore against the shared contract.
func Run(t *testing.T, newStore func(t *testing.T) Backend) {
	t.Run("settings not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, settings.ErrNotFound)
	})

	t.Run("settings round trip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		want := Sample()

		require.NoError(t, s.Save(ctx, "u1", want))
		got, err := s.Get(ctx, "u1")
		require.NoError(t, err)

		assert.True(t, want.MandayRate.Equal(got.MandayRate))
		assert.True(t, want.VATRate.Equal(got.VATRate))
		assert.Equal(t, want.Currency, got.Currency)
		assert.Equal(t, want.Country, got.Country)
		assert.Equal(t, want.TimeZone, got.TimeZone)
		assert.Equal(t, want.WorkHoursStart, got.WorkHoursStart)
		assert.Equal(t, want.WorkHoursEnd, got.WorkHoursEnd)
	})

	t.Run("settings save replaces", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first := Sample()
		require.NoError(t, s.Save(ctx, "u1", first))

		second := Sample()
		second.VATRate = decimal.Zero
		second.Currency = "EUR"
		require.NoError(t, s.Save(ctx, "u1", second))

		got, err := s.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "EUR", got.Currency)
		assert.True(t, got.VATRate.IsZero())
		assert.False(t, got.UseVAT())
	})

	t.Run("holidays save list delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		later := holiday.Holiday{ID: "h2", Country: "cz", Date: time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), Name: "Year end"}
		earlier := holiday.Holiday{ID: "h1", Country: "CZ", Date: time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC), Name: "Summer closure"}
		other := holiday.Holiday{ID: "h3", Country: "DE", Date: time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), Name: "Offsite", Type: holiday.TypeBank}

		for _, h := range []holiday.Holiday{later, earlier, other} {
			require.NoError(t, s.SaveHoliday(ctx, h))
		}

		cz, err := s.ListHolidays(ctx, "CZ")
		require.NoError(t, err)
		require.Len(t, cz, 2)
		assert.Equal(t, "h1", cz[0].ID)
		assert.Equal(t, "h2", cz[1].ID)
		assert.Equal(t, "CZ", cz[1].Country)
		assert.Equal(t, holiday.TypePublic, cz[0].Type)
		assert.True(t, cz[0].Custom)
		assert.True(t, holiday.SameDay(earlier.Date, cz[0].Date))

		all, err := s.ListHolidays(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "h3", all[0].ID)
		assert.Equal(t, holiday.TypeBank, all[0].Type)

		require.NoError(t, s.DeleteHoliday(ctx, "h1"))
		cz, err = s.ListHolidays(ctx, "CZ")
		require.NoError(t, err)
		assert.Len(t, cz, 1)

		assert.ErrorIs(t, s.DeleteHoliday(ctx, "h1"), holiday.ErrHolidayNotFound)
	})

	t.Run("holiday save is an upsert", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		h := holiday.Holiday{ID: "h1", Country: "CZ", Date: time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC), Name: "Closure"}
		require.NoError(t, s.SaveHoliday(ctx, h))
		h.Name = "Renamed"
		require.NoError(t, s.SaveHoliday(ctx, h))

		hs, err := s.ListHolidays(ctx, "CZ")
		require.NoError(t, err)
		require.Len(t, hs, 1)
		assert.Equal(t, "Renamed", hs[0].Name)
	})

	t.Run("custom calendar loads from store", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.SaveHoliday(ctx, holiday.Holiday{
			ID: "h1", Country: "CZ", Date: time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC), Name: "Closure",
		}))

		custom := holiday.NewCustom()
		require.NoError(t, custom.Load(ctx, s))

		ok, err := custom.IsPublicHoliday(time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC), "CZ")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
