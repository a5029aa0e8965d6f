/*
Package holiday provides public-holiday lookup by country.

PURPOSE:
  The earnings engine treats a public holiday like a weekend: it is not a
  working day. Holiday data is a pluggable capability, so the calendar-data
  provider can be swapped without touching the calculation core.

KEY TYPES:
  Source:    IsPublicHoliday(date, country) - what the calculator consumes
  Calendar:  Holidays(country, year)        - full year listing
  Rules:     computed national calendars (github.com/rickar/cal/v2)
  Custom:    extra public holidays managed at runtime (company closures)
  Merged:    Rules + Custom; the production Source

PUBLIC ONLY:
  Only holidays of type "public" make a day non-working. Bank holidays,
  religious observances and optional days are listed with their type but
  never answer true from IsPublicHoliday.

CIVIL DATES:
  Matching compares the zone-local year/month/day of the date passed in,
  never its UTC date. Callers pass the date already converted to the
  user's zone (e.g. 00:30 in Prague on Jan 1 is still Jan 1).

FAILURE:
  A country without rules is ErrUnsupportedCountry. Callers must not treat
  that as "no holidays" since it would overstate earnings.

SEE ALSO:
  - rules.go: rickar/cal backed national rules
  - custom.go: runtime-managed holidays + Store interface
  - earnings/calendar.go: IsHoliday / working-day predicates
*/
package holiday

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrUnsupportedCountry is returned when no rules exist for a country.
	ErrUnsupportedCountry = errors.New("unsupported holiday country")

	// ErrHolidayNotFound is returned when deleting an unknown custom holiday.
	ErrHolidayNotFound = errors.New("holiday not found")
)

// UnsupportedCountryError names the country that failed.
type UnsupportedCountryError struct {
	Country string
}

func (e *UnsupportedCountryError) Error() string {
	return fmt.Sprintf("no public holiday rules for country %q", e.Country)
}

func (e *UnsupportedCountryError) Unwrap() error { return ErrUnsupportedCountry }

// =============================================================================
// HOLIDAY
// =============================================================================

// Type classifies a holiday.
type Type string

const (
	TypePublic     Type = "public"
	TypeBank       Type = "bank"
	TypeObservance Type = "observance"
)

// Holiday is a single dated holiday for a country.
type Holiday struct {
	ID      string
	Country string
	// Date is the civil date at midnight UTC.
	Date time.Time
	Name string
	Type Type
	// Custom marks holidays added at runtime rather than computed from rules.
	Custom bool
}

// IsPublic reports whether the holiday makes the day non-working.
func (h Holiday) IsPublic() bool { return h.Type == TypePublic }

// Day truncates any instant to its civil date (midnight UTC), using the
// year/month/day as seen in t's own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay compares civil dates in each value's own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NormalizeCountry upper-cases a 2-letter country code.
func NormalizeCountry(country string) string { return strings.ToUpper(country) }

// =============================================================================
// INTERFACES
// =============================================================================

// Source answers the single question the calculator asks.
type Source interface {
	IsPublicHoliday(date time.Time, country string) (bool, error)
}

// Calendar lists holidays for a country and year, sorted by date.
type Calendar interface {
	Holidays(country string, year int) ([]Holiday, error)
}

// isPublicOn implements Source for any Calendar.
func isPublicOn(c Calendar, date time.Time, country string) (bool, error) {
	hs, err := c.Holidays(country, date.Year())
	if err != nil {
		return false, err
	}
	for _, h := range hs {
		if h.IsPublic() && SameDay(h.Date, date) {
			return true, nil
		}
	}
	return false, nil
}

func sortByDate(hs []Holiday) {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}

// =============================================================================
// MERGED - Rules + Custom
// =============================================================================

// Merged combines computed national rules with runtime-managed holidays.
// Rules decide whether a country is supported at all.
type Merged struct {
	Rules  *Rules
	Custom *Custom
}

func NewMerged(rules *Rules, custom *Custom) *Merged {
	return &Merged{Rules: rules, Custom: custom}
}

func (m *Merged) Holidays(country string, year int) ([]Holiday, error) {
	hs, err := m.Rules.Holidays(country, year)
	if err != nil {
		return nil, err
	}
	if m.Custom == nil {
		return hs, nil
	}
	extra, _ := m.Custom.Holidays(country, year)
	if len(extra) == 0 {
		return hs, nil
	}
	out := make([]Holiday, 0, len(hs)+len(extra))
	out = append(out, hs...)
	out = append(out, extra...)
	sortByDate(out)
	return out, nil
}

func (m *Merged) IsPublicHoliday(date time.Time, country string) (bool, error) {
	return isPublicOn(m, date, country)
}

// Supports reports whether the country has rules.
func (m *Merged) Supports(country string) bool { return m.Rules.Supports(country) }
