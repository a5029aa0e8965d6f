package holiday

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/cz"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"
)

// =============================================================================
// RULES - National calendars computed from rickar/cal
// =============================================================================

// DefaultCountries maps ISO 3166-1 alpha-2 codes to national holiday rules.
// Easter-linked and weekday-anchored holidays are computed per year.
// UK bank holidays are the country's public holidays.
var DefaultCountries = map[string][]*cal.Holiday{
	"AT": at.Holidays,
	"CZ": cz.Holidays,
	"DE": de.Holidays,
	"FR": fr.Holidays,
	"GB": asPublic(gb.Holidays),
	"US": us.Holidays,
}

func asPublic(rules []*cal.Holiday) []*cal.Holiday {
	out := make([]*cal.Holiday, len(rules))
	for i, rule := range rules {
		out[i] = rule.Clone(&cal.Holiday{Type: cal.ObservancePublic})
	}
	return out
}

// Rules computes holidays from rule sets. Year listings are memoized; a rule
// set yields the same dates for a year forever.
type Rules struct {
	countries map[string][]*cal.Holiday
	years     *cache.Cache
}

// NewRules builds a Rules source. A nil map uses DefaultCountries.
func NewRules(countries map[string][]*cal.Holiday) *Rules {
	if countries == nil {
		countries = DefaultCountries
	}
	return &Rules{
		countries: countries,
		years:     cache.New(cache.NoExpiration, 0),
	}
}

// Supports reports whether rules exist for country.
func (r *Rules) Supports(country string) bool {
	_, ok := r.countries[NormalizeCountry(country)]
	return ok
}

// Countries lists supported country codes, sorted.
func (r *Rules) Countries() []string {
	out := make([]string, 0, len(r.countries))
	for c := range r.countries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Rules) Holidays(country string, year int) ([]Holiday, error) {
	country = NormalizeCountry(country)
	rules, ok := r.countries[country]
	if !ok {
		return nil, &UnsupportedCountryError{Country: country}
	}

	key := fmt.Sprintf("%s:%d", country, year)
	if v, found := r.years.Get(key); found {
		return v.([]Holiday), nil
	}

	// A weekend holiday may be observed on a weekday of the neighbouring
	// year (US New Year's Day 2022 on 2021-12-31), so adjacent years are
	// computed too and filtered by date.
	hs := make([]Holiday, 0, len(rules))
	for y := year - 1; y <= year+1; y++ {
		for _, rule := range rules {
			actual, observed := rule.Calc(y)
			if actual.IsZero() {
				// Rule not in effect that year (StartYear/EndYear/Except).
				continue
			}
			if actual.Year() == year {
				hs = append(hs, ruleHoliday(country, rule, actual, rule.Name))
			}
			if !observed.IsZero() && !SameDay(observed, actual) && observed.Year() == year {
				hs = append(hs, ruleHoliday(country, rule, observed, rule.Name+" (observed)"))
			}
		}
	}
	sortByDate(hs)
	r.years.SetDefault(key, hs)
	return hs, nil
}

func ruleHoliday(country string, rule *cal.Holiday, on time.Time, name string) Holiday {
	return Holiday{
		ID:      fmt.Sprintf("%s-%s-%s", country, on.Format("2006-01-02"), name),
		Country: country,
		Date:    Day(on),
		Name:    name,
		Type:    typeOf(rule.Type),
	}
}

func (r *Rules) IsPublicHoliday(date time.Time, country string) (bool, error) {
	return isPublicOn(r, date, country)
}

func typeOf(t cal.ObservanceType) Type {
	switch t {
	case cal.ObservancePublic:
		return TypePublic
	case cal.ObservanceBank:
		return TypeBank
	default:
		return TypeObservance
	}
}
