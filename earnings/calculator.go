package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
)

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator evaluates earnings against an injected holiday source.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	holidays holiday.Source
}

// NewCalculator creates a calculator. src must not be nil.
func NewCalculator(src holiday.Source) *Calculator {
	return &Calculator{holidays: src}
}

// localize validates s and converts now into the user's zone.
func localize(now time.Time, s settings.UserSettings) (time.Time, error) {
	if err := s.Validate(); err != nil {
		return time.Time{}, err
	}
	loc, err := s.Location()
	if err != nil {
		return time.Time{}, err
	}
	return now.In(loc), nil
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// CalendarFacts describes now from the user's point of view.
type CalendarFacts struct {
	Now                time.Time
	IsWeekend          bool
	IsHoliday          bool
	IsEarningTime      bool
	WorkingDaysInMonth int
}

// Result holds the money figures shown on the dashboard. When UseVAT is
// set every amount already includes VAT.
type Result struct {
	CurrentEarnings decimal.Decimal
	MaximumEarnings decimal.Decimal
	GrowthRate      GrowthRate
	UseVAT          bool
	Currency        string
}

// Dashboard is the full projection of (now, settings).
type Dashboard struct {
	Settings settings.UserSettings
	Calendar CalendarFacts
	Earnings Result
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// Calendar computes the calendar facts for now.
func (c *Calculator) Calendar(now time.Time, s settings.UserSettings) (CalendarFacts, error) {
	local, err := localize(now, s)
	if err != nil {
		return CalendarFacts{}, err
	}
	return c.calendar(local, s)
}

func (c *Calculator) calendar(local time.Time, s settings.UserSettings) (CalendarFacts, error) {
	isHoliday, err := c.IsHoliday(local, s.Country)
	if err != nil {
		return CalendarFacts{}, err
	}
	earning, err := c.isEarningTime(local, s)
	if err != nil {
		return CalendarFacts{}, err
	}
	days, err := c.workingDaysInMonth(local, s.Country)
	if err != nil {
		return CalendarFacts{}, err
	}
	return CalendarFacts{
		Now:                local,
		IsWeekend:          IsWeekend(local),
		IsHoliday:          isHoliday,
		IsEarningTime:      earning,
		WorkingDaysInMonth: days,
	}, nil
}

// Earnings computes the money figures for now, with VAT applied when the
// settings carry a positive VAT rate.
func (c *Calculator) Earnings(now time.Time, s settings.UserSettings) (Result, error) {
	local, err := localize(now, s)
	if err != nil {
		return Result{}, err
	}
	days, err := c.workingDaysInMonth(local, s.Country)
	if err != nil {
		return Result{}, err
	}
	return c.earnings(local, days, s)
}

func (c *Calculator) earnings(local time.Time, workingDays int, s settings.UserSettings) (Result, error) {
	current, err := c.currentEarnings(local, s)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		CurrentEarnings: current,
		MaximumEarnings: maximumFor(workingDays, s),
		GrowthRate:      GrowthRateFor(s.MandayRate),
		UseVAT:          s.UseVAT(),
		Currency:        s.Currency,
	}
	if res.UseVAT {
		res.CurrentEarnings = ApplyVAT(res.CurrentEarnings, s.VATRate)
		res.MaximumEarnings = ApplyVAT(res.MaximumEarnings, s.VATRate)
		res.GrowthRate = res.GrowthRate.WithVAT(s.VATRate)
	}
	return res, nil
}

// Dashboard computes calendar facts and earnings in one pass.
func (c *Calculator) Dashboard(now time.Time, s settings.UserSettings) (Dashboard, error) {
	local, err := localize(now, s)
	if err != nil {
		return Dashboard{}, err
	}
	facts, err := c.calendar(local, s)
	if err != nil {
		return Dashboard{}, err
	}
	res, err := c.earnings(local, facts.WorkingDaysInMonth, s)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Settings: s, Calendar: facts, Earnings: res}, nil
}
