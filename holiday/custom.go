package holiday

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// STORE - Persistence for runtime-managed holidays
// =============================================================================

// Store persists custom holidays.
type Store interface {
	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	// ListHolidays returns custom holidays for a country; "" lists all.
	ListHolidays(ctx context.Context, country string) ([]Holiday, error)
}

// =============================================================================
// CUSTOM - In-memory set of runtime-managed holidays
// =============================================================================

// Custom holds extra public holidays (e.g. company closure days) per country.
// It is loaded from a Store at startup and kept in sync by the API, so lookups
// on the calculation path never do I/O.
type Custom struct {
	loadMu sync.Mutex

	mu   sync.RWMutex
	byID map[string]Holiday
	// While a Load is listing storage, Put and Remove are also journaled
	// so they can be replayed over the listing.
	loading bool
	journal []change
}

type change struct {
	id      string
	holiday Holiday
	removed bool
}

func NewCustom() *Custom {
	return &Custom{byID: make(map[string]Holiday)}
}

// Load replaces the set with everything in store. Put and Remove calls made
// while the store is being listed are replayed on top of the listing, so a
// holiday created during a reload is not lost.
func (c *Custom) Load(ctx context.Context, store Store) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	hs, err := store.ListHolidays(ctx, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	journal := c.journal
	c.loading = false
	c.journal = nil
	if err != nil {
		return err
	}

	byID := make(map[string]Holiday, len(hs))
	for _, h := range hs {
		byID[h.ID] = normalize(h)
	}
	for _, ch := range journal {
		if ch.removed {
			delete(byID, ch.id)
		} else {
			byID[ch.id] = ch.holiday
		}
	}
	c.byID = byID
	return nil
}

// Put adds or replaces a holiday. Callers persist it first.
func (c *Custom) Put(h Holiday) {
	h = normalize(h)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[h.ID] = h
	if c.loading {
		c.journal = append(c.journal, change{id: h.ID, holiday: h})
	}
}

// Remove deletes a holiday by ID. Callers delete it from storage first.
func (c *Custom) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, id)
	if c.loading {
		c.journal = append(c.journal, change{id: id, removed: true})
	}
}

// Holidays never fails: an unknown country simply has no custom entries.
func (c *Custom) Holidays(country string, year int) ([]Holiday, error) {
	country = NormalizeCountry(country)
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Holiday
	for _, h := range c.byID {
		if h.Country == country && h.Date.Year() == year {
			out = append(out, h)
		}
	}
	sortByDate(out)
	return out, nil
}

func (c *Custom) IsPublicHoliday(date time.Time, country string) (bool, error) {
	return isPublicOn(c, date, country)
}

func normalize(h Holiday) Holiday {
	h.Country = NormalizeCountry(h.Country)
	h.Date = Day(h.Date)
	h.Custom = true
	if h.Type == "" {
		h.Type = TypePublic
	}
	return h
}
