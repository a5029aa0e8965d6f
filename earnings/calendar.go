package earnings

import (
	"fmt"
	"time"

	"github.com/warp/earnings-engine/settings"
)

// =============================================================================
// CALENDAR PREDICATES
// =============================================================================

// IsWeekend reports whether t falls on Saturday or Sunday in t's own location.
// Convert to the user's zone first; the answer is the same for every
// time-of-day within one civil date.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether t's civil date is a public holiday in country.
func (c *Calculator) IsHoliday(t time.Time, country string) (bool, error) {
	ok, err := c.holidays.IsPublicHoliday(t, country)
	if err != nil {
		return false, fmt.Errorf("holiday lookup %s %s: %w", country, t.Format("2006-01-02"), err)
	}
	return ok, nil
}

// isWorkingDay combines the weekend and holiday predicates.
func (c *Calculator) isWorkingDay(t time.Time, country string) (bool, error) {
	if IsWeekend(t) {
		return false, nil
	}
	holiday, err := c.IsHoliday(t, country)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

// IsEarningTime reports whether now counts toward accrual: a working day and a
// local time-of-day within [WorkHoursStart, WorkHoursEnd).
func (c *Calculator) IsEarningTime(now time.Time, s settings.UserSettings) (bool, error) {
	local, err := localize(now, s)
	if err != nil {
		return false, err
	}
	return c.isEarningTime(local, s)
}

func (c *Calculator) isEarningTime(local time.Time, s settings.UserSettings) (bool, error) {
	tod := settings.Of(local)
	if tod < s.WorkHoursStart || tod >= s.WorkHoursEnd {
		return false, nil
	}
	return c.isWorkingDay(local, s.Country)
}

// =============================================================================
// MONTH ACCOUNTING
// =============================================================================

// WorkingDaysInMonth counts days in now's month (in the user's zone) that are
// neither weekend nor public holiday.
func (c *Calculator) WorkingDaysInMonth(now time.Time, s settings.UserSettings) (int, error) {
	local, err := localize(now, s)
	if err != nil {
		return 0, err
	}
	return c.workingDaysInMonth(local, s.Country)
}

func (c *Calculator) workingDaysInMonth(local time.Time, country string) (int, error) {
	count := 0
	for _, day := range MonthOf(local).Days() {
		ok, err := c.isWorkingDay(day, country)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// MONTH - Calendar month in a location
// =============================================================================

// Month is a calendar month in a specific location.
type Month struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month(), Location: t.Location()}
}

// Len returns the number of days in the month (28-31).
func (m Month) Len() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns the given day of the month at noon local time. Noon keeps the
// civil date stable in zones whose DST transition happens at midnight.
func (m Month) Day(day int) time.Time {
	return time.Date(m.Year, m.Month, day, 12, 0, 0, 0, m.Location)
}

// Days returns every day of the month in order.
func (m Month) Days() []time.Time {
	n := m.Len()
	days := make([]time.Time, 0, n)
	for d := 1; d <= n; d++ {
		days = append(days, m.Day(d))
	}
	return days
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
