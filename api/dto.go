package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
)

// =============================================================================
// SETTINGS DTOs
// =============================================================================

// SettingsDTO is the JSON shape of stored settings.
type SettingsDTO struct {
	MandayRate     float64 `json:"mandayRate"`
	Currency       string  `json:"currency"`
	VATRate        float64 `json:"vatRate"`
	Country        string  `json:"country"`
	TimeZone       string  `json:"timeZone"`
	WorkHoursStart string  `json:"workHoursStart"`
	WorkHoursEnd   string  `json:"workHoursEnd"`
}

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// DASHBOARD DTOs
// =============================================================================

// DashboardDTO is the response of GET /api/dashboard.
type DashboardDTO struct {
	Settings SettingsDTO `json:"settings"`
	Calendar CalendarDTO `json:"calendar"`
	Earnings EarningsDTO `json:"earnings"`
}

// CalendarDTO carries now in the user's zone plus the day classification.
type CalendarDTO struct {
	Now                string `json:"now"`
	IsWeekend          bool   `json:"isWeekend"`
	IsHoliday          bool   `json:"isHoliday"`
	IsEarningTime      bool   `json:"isEarningTime"`
	WorkingDaysInMonth int    `json:"workingDaysInMonth"`
}

// EarningsDTO holds money figures, VAT already applied when UseVAT is set.
type EarningsDTO struct {
	CurrentEarnings    float64       `json:"currentEarnings"`
	MaximumEarnings    float64       `json:"maximumEarnings"`
	EarningsGrowthRate GrowthRateDTO `json:"earningsGrowthRate"`
	UseVAT             bool          `json:"useVAT"`
	Currency           string        `json:"currency"`
}

type GrowthRateDTO struct {
	PerDay    float64 `json:"perDay"`
	PerHour   float64 `json:"perHour"`
	PerMinute float64 `json:"perMinute"`
	PerSecond float64 `json:"perSecond"`
}

// =============================================================================
// HOLIDAY DTOs
// =============================================================================

// HolidayDTO is one listed holiday.
type HolidayDTO struct {
	ID      string `json:"id"`
	Country string `json:"country"`
	Date    string `json:"date"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Custom  bool   `json:"custom"`
}

// CreateHolidayRequest is the body of POST /api/holidays.
type CreateHolidayRequest struct {
	Country string `json:"country"`
	Date    string `json:"date"`
	Name    string `json:"name"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toSettingsDTO(s settings.UserSettings) SettingsDTO {
	return SettingsDTO{
		MandayRate:     money(s.MandayRate),
		Currency:       s.Currency,
		VATRate:        money(s.VATRate),
		Country:        s.Country,
		TimeZone:       s.TimeZone,
		WorkHoursStart: s.WorkHoursStart.String(),
		WorkHoursEnd:   s.WorkHoursEnd.String(),
	}
}

func toDashboardDTO(d earnings.Dashboard) DashboardDTO {
	g := d.Earnings.GrowthRate
	return DashboardDTO{
		Settings: toSettingsDTO(d.Settings),
		Calendar: CalendarDTO{
			Now:                d.Calendar.Now.Format(time.RFC3339),
			IsWeekend:          d.Calendar.IsWeekend,
			IsHoliday:          d.Calendar.IsHoliday,
			IsEarningTime:      d.Calendar.IsEarningTime,
			WorkingDaysInMonth: d.Calendar.WorkingDaysInMonth,
		},
		Earnings: EarningsDTO{
			CurrentEarnings: money(d.Earnings.CurrentEarnings),
			MaximumEarnings: money(d.Earnings.MaximumEarnings),
			EarningsGrowthRate: GrowthRateDTO{
				PerDay:    money(g.PerDay),
				PerHour:   money(g.PerHour),
				PerMinute: money(g.PerMinute),
				PerSecond: money(g.PerSecond),
			},
			UseVAT:   d.Earnings.UseVAT,
			Currency: d.Earnings.Currency,
		},
	}
}

func toHolidayDTOs(hs []holiday.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, len(hs))
	for i, h := range hs {
		dtos[i] = HolidayDTO{
			ID:      h.ID,
			Country: h.Country,
			Date:    h.Date.Format("2006-01-02"),
			Name:    h.Name,
			Type:    string(h.Type),
			Custom:  h.Custom,
		}
	}
	return dtos
}
