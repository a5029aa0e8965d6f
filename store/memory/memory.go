// Package memory provides in-memory Store implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store implements settings.Store and holiday.Store in process memory.
type Store struct {
	mu       sync.RWMutex
	settings map[string]settings.UserSettings
	holidays map[string]holiday.Holiday
}

func New() *Store {
	return &Store{
		settings: make(map[string]settings.UserSettings),
		holidays: make(map[string]holiday.Holiday),
	}
}

// Get returns the settings for userID, or settings.ErrNotFound.
func (m *Store) Get(_ context.Context, userID string) (settings.UserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[userID]
	if !ok {
		return settings.UserSettings{}, settings.ErrNotFound
	}
	return s, nil
}

// Save replaces the settings for userID.
func (m *Store) Save(_ context.Context, userID string, s settings.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[userID] = s
	return nil
}

func (m *Store) SaveHoliday(_ context.Context, h holiday.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h.Country = holiday.NormalizeCountry(h.Country)
	h.Date = holiday.Day(h.Date)
	h.Custom = true
	if h.Type == "" {
		h.Type = holiday.TypePublic
	}
	m.holidays[h.ID] = h
	return nil
}

func (m *Store) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return holiday.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

// ListHolidays returns holidays for country ordered by date; "" lists all.
func (m *Store) ListHolidays(_ context.Context, country string) ([]holiday.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	country = holiday.NormalizeCountry(country)
	var out []holiday.Holiday
	for _, h := range m.holidays {
		if country == "" || h.Country == country {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Close is a no-op; it lets Store stand in wherever a database is closed.
func (m *Store) Close() error { return nil }
