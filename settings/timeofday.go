package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME OF DAY - Minutes since midnight
// =============================================================================

// TimeOfDay is a wall-clock time expressed as minutes since local midnight.
// Valid values are 0..1439.
type TimeOfDay int

const minutesPerDay = 24 * 60

var timeOfDayPattern = regexp.MustCompile(`^(0?[0-9]|1[0-9]|2[0-3])(:[0-5][0-9])?$`)

// ErrInvalidTimeOfDay is returned for strings not in "H" or "H:MM" form.
var ErrInvalidTimeOfDay = errors.New("time of day must be in format H or H:MM (e.g. 9, 9:30)")

// ParseTimeOfDay parses "H" or "H:MM" (hour 0-23, minute 0-59).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if !timeOfDayPattern.MatchString(s) {
		return 0, ErrInvalidTimeOfDay
	}
	h, m, _ := strings.Cut(s, ":")
	hour, _ := strconv.Atoi(h)
	minute := 0
	if m != "" {
		minute, _ = strconv.Atoi(m)
	}
	return NewTimeOfDay(hour, minute), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for constants and tests.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(fmt.Sprintf("invalid time of day %q", s))
	}
	return t
}

func NewTimeOfDay(hour, minute int) TimeOfDay { return TimeOfDay(hour*60 + minute) }

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) IsValid() bool { return t >= 0 && t < minutesPerDay }

// String formats as "H:MM", the canonical stored form.
func (t TimeOfDay) String() string { return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute()) }

// On returns this time of day on the civil date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// Of returns the time-of-day of t in t's own location, truncated to the minute.
func Of(t time.Time) TimeOfDay { return NewTimeOfDay(t.Hour(), t.Minute()) }

// Until returns the nominal duration from t to end.
func (t TimeOfDay) Until(end TimeOfDay) time.Duration {
	return time.Duration(end-t) * time.Minute
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidTimeOfDay
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
