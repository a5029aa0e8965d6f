/*
Package earnings is the calculation core of the earnings engine.

PURPOSE:
  Given a moment and a user's work schedule, compute calendar facts
  (weekend, public holiday, earning time, working days in the month) and
  money accrued since the start of the month, the month's ceiling and the
  instantaneous growth rate. Every function is a pure projection of
  (now, settings); nothing is retained between calls.

KEY CONCEPTS:
  - Working day: neither Saturday/Sunday nor a public holiday in the
    user's country, judged on the civil date in the user's time zone.
  - Earning time: a working day, and local time-of-day within
    [WorkHoursStart, WorkHoursEnd).
  - Accrual: one full manday rate per completed working day this month,
    plus the elapsed fraction of today's work window.

ROUNDING CONTRACT:
  Every monetary output is rounded to 2 decimal places, half away from
  zero (decimal.Round). VAT is applied to the rounded figure, then the
  product is rounded again. Growth-rate fields are each derived from the
  unrounded manday rate and rounded independently.

FAILURE:
  Settings are re-validated on entry; malformed settings produce a
  *settings.ValidationError. Holiday-source errors propagate unchanged.
  There is no degraded mode.

SEE ALSO:
  - calendar.go: weekend/holiday/earning-time predicates, month accounting
  - accrual.go: current and maximum earnings
  - calculator.go: Calculator and the Dashboard projection
*/
package earnings

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY HELPERS
// =============================================================================

// MoneyPlaces is the number of decimal places kept on monetary outputs.
const MoneyPlaces = 2

// HoursPerManday is the nominal length of a manday for growth-rate purposes.
const HoursPerManday = 8

var (
	hoursPerDay   = decimal.NewFromInt(HoursPerManday)
	minutesPerDay = decimal.NewFromInt(HoursPerManday * 60)
	secondsPerDay = decimal.NewFromInt(HoursPerManday * 60 * 60)
	one           = decimal.NewFromInt(1)
)

// Round rounds to 2 decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ApplyVAT returns round(amount * (1 + vatRate)).
func ApplyVAT(amount, vatRate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(one.Add(vatRate)))
}

// =============================================================================
// GROWTH RATE
// =============================================================================

// GrowthRate is the accrual speed at different granularities.
type GrowthRate struct {
	PerDay    decimal.Decimal
	PerHour   decimal.Decimal
	PerMinute decimal.Decimal
	PerSecond decimal.Decimal
}

// GrowthRateFor derives the rate from a manday rate. Each field divides the
// unrounded manday rate, so rounding never compounds across fields.
func GrowthRateFor(mandayRate decimal.Decimal) GrowthRate {
	return GrowthRate{
		PerDay:    Round(mandayRate),
		PerHour:   Round(mandayRate.Div(hoursPerDay)),
		PerMinute: Round(mandayRate.Div(minutesPerDay)),
		PerSecond: Round(mandayRate.Div(secondsPerDay)),
	}
}

// WithVAT applies VAT to every field.
func (g GrowthRate) WithVAT(vatRate decimal.Decimal) GrowthRate {
	return GrowthRate{
		PerDay:    ApplyVAT(g.PerDay, vatRate),
		PerHour:   ApplyVAT(g.PerHour, vatRate),
		PerMinute: ApplyVAT(g.PerMinute, vatRate),
		PerSecond: ApplyVAT(g.PerSecond, vatRate),
	}
}
