package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/settings"
)

// =============================================================================
// EARNINGS ACCRUAL
// =============================================================================

// CurrentEarnings returns money accrued from the start of now's month through
// now, before VAT, rounded to 2 places.
//
//	full days:  every working day strictly before today adds MandayRate
//	today:      if a working day and now is past WorkHoursStart, adds
//	            MandayRate * elapsed / window, with elapsed capped at WorkHoursEnd
//
// Holidays are irregular per-country exceptions, so days are walked one by
// one rather than counted with weekday arithmetic.
func (c *Calculator) CurrentEarnings(now time.Time, s settings.UserSettings) (decimal.Decimal, error) {
	local, err := localize(now, s)
	if err != nil {
		return decimal.Zero, err
	}
	return c.currentEarnings(local, s)
}

func (c *Calculator) currentEarnings(local time.Time, s settings.UserSettings) (decimal.Decimal, error) {
	month := MonthOf(local)
	total := decimal.Zero

	for d := 1; d < local.Day(); d++ {
		ok, err := c.isWorkingDay(month.Day(d), s.Country)
		if err != nil {
			return decimal.Zero, err
		}
		if ok {
			total = total.Add(s.MandayRate)
		}
	}

	working, err := c.isWorkingDay(local, s.Country)
	if err != nil {
		return decimal.Zero, err
	}
	if working {
		total = total.Add(s.MandayRate.Mul(dayFraction(local, s)))
	}

	return Round(total), nil
}

// dayFraction is the share of today's work window elapsed at local, in [0, 1].
func dayFraction(local time.Time, s settings.UserSettings) decimal.Decimal {
	workStart := s.WorkHoursStart.On(local)
	workEnd := s.WorkHoursEnd.On(local)
	if !local.After(workStart) {
		return decimal.Zero
	}

	end := local
	if end.After(workEnd) {
		end = workEnd
	}

	// Real elapsed time on the day, so a DST shift inside the window still
	// adds up to one full manday at WorkHoursEnd.
	window := workEnd.Sub(workStart)
	if window <= 0 {
		return decimal.Zero
	}
	fraction := decimal.NewFromInt(int64(end.Sub(workStart))).
		Div(decimal.NewFromInt(int64(window)))

	if fraction.GreaterThan(one) {
		return one
	}
	return fraction
}

// MaximumEarnings is the month's ceiling: working days * MandayRate, rounded.
func (c *Calculator) MaximumEarnings(now time.Time, s settings.UserSettings) (decimal.Decimal, error) {
	local, err := localize(now, s)
	if err != nil {
		return decimal.Zero, err
	}
	days, err := c.workingDaysInMonth(local, s.Country)
	if err != nil {
		return decimal.Zero, err
	}
	return maximumFor(days, s), nil
}

func maximumFor(workingDays int, s settings.UserSettings) decimal.Decimal {
	return Round(s.MandayRate.Mul(decimal.NewFromInt(int64(workingDays))))
}
