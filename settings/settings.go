/*
Package settings defines the per-user work schedule the earnings engine runs on.

PURPOSE:
  UserSettings is the immutable snapshot handed to the calculator: manday rate,
  currency, VAT rate, country, IANA time zone and the daily work window.
  This package owns the schema for those values, their validation, and the
  Store interface the persistence layer implements.

VALIDATION:
  Input is the raw, client-supplied shape (JSON). Input.Parse validates every
  field and returns either a UserSettings or a *ValidationError listing every
  problem at once. Nothing is coerced: a value that does not match the schema
  is rejected, never trimmed or clamped.

  Schema:
    mandayRate      >= 0
    currency        exactly 3 letters
    vatRate         0..1 inclusive
    country         exactly 2 letters
    timeZone        non-empty, loadable IANA name
    workHoursStart  H or H:MM, hour 0-23, minute 0-59
    workHoursEnd    same format, strictly after workHoursStart

SEE ALSO:
  - timeofday.go: TimeOfDay (minutes since midnight)
  - store.go: Store interface and the read-through cache
  - earnings/calculator.go: consumes UserSettings
*/
package settings

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// USER SETTINGS
// =============================================================================

// UserSettings is a validated work schedule.
type UserSettings struct {
	MandayRate     decimal.Decimal
	Currency       string
	VATRate        decimal.Decimal
	Country        string
	TimeZone       string
	WorkHoursStart TimeOfDay
	WorkHoursEnd   TimeOfDay
}

// Location loads the settings' time zone.
func (s UserSettings) Location() (*time.Location, error) {
	if s.TimeZone == "" {
		return nil, ErrUnknownTimeZone
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, ErrUnknownTimeZone
	}
	return loc, nil
}

// UseVAT reports whether displayed figures include VAT.
func (s UserSettings) UseVAT() bool { return s.VATRate.IsPositive() }

// WorkDay is the nominal length of the daily work window.
func (s UserSettings) WorkDay() time.Duration { return s.WorkHoursStart.Until(s.WorkHoursEnd) }

// Validate re-checks a typed snapshot. Settings loaded from storage pass
// through here before any calculation.
func (s UserSettings) Validate() error {
	return s.Input().validate(nil)
}

// Input converts back to the raw schema shape.
func (s UserSettings) Input() Input {
	rate, vat := s.MandayRate, s.VATRate
	return Input{
		MandayRate:     &rate,
		Currency:       s.Currency,
		VATRate:        &vat,
		Country:        s.Country,
		TimeZone:       s.TimeZone,
		WorkHoursStart: s.WorkHoursStart.String(),
		WorkHoursEnd:   s.WorkHoursEnd.String(),
	}
}

// =============================================================================
// INPUT - Raw client-supplied settings
// =============================================================================

// Input is the wire shape of settings as submitted by a client.
type Input struct {
	MandayRate     *decimal.Decimal `json:"mandayRate"`
	Currency       string           `json:"currency"`
	VATRate        *decimal.Decimal `json:"vatRate"`
	Country        string           `json:"country"`
	TimeZone       string           `json:"timeZone"`
	WorkHoursStart string           `json:"workHoursStart"`
	WorkHoursEnd   string           `json:"workHoursEnd"`
}

// CountryCheck reports whether a country code is usable (e.g. has holiday rules).
type CountryCheck func(country string) bool

// Parse validates the input and returns typed settings.
// An optional CountryCheck adds an "unsupported country" field error.
func (in Input) Parse(supported CountryCheck) (UserSettings, error) {
	if err := in.validate(supported); err != nil {
		return UserSettings{}, err
	}
	start, _ := ParseTimeOfDay(in.WorkHoursStart)
	end, _ := ParseTimeOfDay(in.WorkHoursEnd)
	return UserSettings{
		MandayRate:     *in.MandayRate,
		Currency:       in.Currency,
		VATRate:        *in.VATRate,
		Country:        in.Country,
		TimeZone:       in.TimeZone,
		WorkHoursStart: start,
		WorkHoursEnd:   end,
	}, nil
}

func (in Input) validate(supported CountryCheck) error {
	var v validator

	switch {
	case in.MandayRate == nil:
		v.add("mandayRate", "manday rate is required")
	case in.MandayRate.IsNegative():
		v.add("mandayRate", "manday rate must be a positive number or zero (e.g. 10000)")
	}

	if !isLetters(in.Currency, 3) {
		v.add("currency", "currency must be a 3-letter code (e.g. CZK)")
	}

	switch {
	case in.VATRate == nil:
		v.add("vatRate", "VAT rate is required")
	case in.VATRate.IsNegative():
		v.add("vatRate", "VAT rate must be a minimum of 0% (e.g. 0.0)")
	case in.VATRate.GreaterThan(decimal.NewFromInt(1)):
		v.add("vatRate", "VAT rate must be a maximum of 100% (e.g. 1.0)")
	}

	switch {
	case !isLetters(in.Country, 2):
		v.add("country", "country must be a 2-letter code (e.g. CZ)")
	case supported != nil && !supported(in.Country):
		v.add("country", "country has no public holiday calendar")
	}

	if in.TimeZone == "" {
		v.add("timeZone", "time zone is required (e.g. Europe/Prague)")
	} else if _, err := time.LoadLocation(in.TimeZone); err != nil {
		v.add("timeZone", "time zone must be a valid IANA name (e.g. Europe/Prague)")
	}

	start, startErr := ParseTimeOfDay(in.WorkHoursStart)
	if startErr != nil {
		v.add("workHoursStart", "work hours start must be in format H or H:MM (e.g. 9, 9:30)")
	}
	end, endErr := ParseTimeOfDay(in.WorkHoursEnd)
	if endErr != nil {
		v.add("workHoursEnd", "work hours end must be in format H or H:MM (e.g. 17, 17:30)")
	}
	if startErr == nil && endErr == nil && start >= end {
		v.add("workHoursEnd", "work hours end must be after work hours start")
	}

	return v.err()
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
