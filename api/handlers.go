/*
handlers.go - HTTP API handlers for the earnings engine

PURPOSE:
  Exposes the earnings calculator and settings storage via REST API.
  Handles HTTP request/response and JSON serialization, and delegates
  every calculation to the earnings package.

ENDPOINTS:
  Dashboard:
    GET    /api/dashboard              Earnings and calendar facts for now
                                       (?at=RFC3339 evaluates another instant)

  Settings:
    GET    /api/settings               Stored settings of the caller
    POST   /api/settings               Validate and store settings

  Holidays:
    GET    /api/holidays               Public holidays (?country=CZ&year=2025)
    POST   /api/holidays               Add a custom public holiday
    DELETE /api/holidays/{id}          Remove a custom public holiday

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Settings: per-user settings storage (normally a CachedStore)
  - Holidays: custom holiday storage, mirrored into Calendar.Custom
  - Calendar: national rules + custom holidays
  - Calculator: pure earnings core built on Calendar

IDENTITY:
  Every /api route runs behind auth.Middleware; handlers read the user
  id with auth.UserIDFromContext.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid identity
  - 404: Settings or holiday not found
  - 422: Country without holiday rules
  - 500: Internal errors
  - 504: Storage did not answer within the settings timeout

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - earnings/calculator.go: Dashboard computation
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/earnings-engine/auth"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/metrics"
	"github.com/warp/earnings-engine/settings"
)

const (
	defaultTimeout = 3 * time.Second
	maxBodyBytes   = 1 << 16
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Settings   settings.Store
	Holidays   holiday.Store
	Calendar   *holiday.Merged
	Calculator *earnings.Calculator
	Log        *zap.Logger

	// Timeout bounds every storage call made while serving a request.
	Timeout time.Duration
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// NewHandler creates a handler. The calculator is built on calendar.
func NewHandler(settingsStore settings.Store, holidayStore holiday.Store, calendar *holiday.Merged, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Settings:   settingsStore,
		Holidays:   holidayStore,
		Calendar:   calendar,
		Calculator: earnings.NewCalculator(calendar),
		Log:        log,
		Timeout:    defaultTimeout,
		Now:        time.Now,
	}
}

func (h *Handler) storageContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns calendar facts and earnings for the caller.
// GET /api/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := auth.UserIDFromContext(r.Context())

	now := h.Now()
	if at := r.URL.Query().Get("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid at parameter (use RFC3339)", err)
			return
		}
		now = t
	}

	ctx, cancel := h.storageContext(r)
	defer cancel()

	s, err := h.Settings.Get(ctx, userID)
	if err != nil {
		metrics.ObserveDashboard(metrics.ResultError, time.Since(start))
		h.writeStorageError(w, err, "Failed to load user settings")
		return
	}

	dash, err := h.Calculator.Dashboard(now, s)
	if err != nil {
		metrics.ObserveDashboard(metrics.ResultError, time.Since(start))
		h.Log.Error("dashboard computation failed",
			zap.String("user_id", userID),
			zap.String("country", s.Country),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard", err)
		return
	}

	metrics.ObserveDashboard(metrics.ResultSuccess, time.Since(start))
	writeJSON(w, http.StatusOK, toDashboardDTO(dash))
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the caller's stored settings.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storageContext(r)
	defer cancel()

	s, err := h.Settings.Get(ctx, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeStorageError(w, err, "Failed to load user settings")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(s))
}

// UpdateSettings validates and stores the caller's settings.
// POST /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := settings.ParseJSON(body, h.Calendar.Supports)
	if err != nil {
		metrics.IncSettingsUpdate("invalid")
		writeValidationError(w, err)
		return
	}

	ctx, cancel := h.storageContext(r)
	defer cancel()

	if err := h.Settings.Save(ctx, userID, s); err != nil {
		metrics.IncSettingsUpdate(metrics.ResultError)
		h.Log.Error("save settings failed", zap.String("user_id", userID), zap.Error(err))
		h.writeStorageError(w, err, "Failed to save user settings")
		return
	}

	metrics.IncSettingsUpdate(metrics.ResultSuccess)
	h.Log.Info("settings updated", zap.String("user_id", userID), zap.String("country", s.Country))
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User settings updated successfully"})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns public holidays and observances for a country and year.
// GET /api/holidays?country=CZ&year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required", nil)
		return
	}

	year := h.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	hs, err := h.Calendar.Holidays(country, year)
	if err != nil {
		writeError(w, statusFor(err), "Failed to list holidays", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"country":  holiday.NormalizeCountry(country),
		"year":     year,
		"holidays": toHolidayDTOs(hs),
	})
}

// CreateHoliday adds a custom public holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Country == "" || req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Country, date and name are required", nil)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	country := holiday.NormalizeCountry(req.Country)
	if !h.Calendar.Supports(country) {
		writeError(w, http.StatusUnprocessableEntity, "Unsupported country",
			&holiday.UnsupportedCountryError{Country: country})
		return
	}

	hol := holiday.Holiday{
		ID:      fmt.Sprintf("holiday-%d", time.Now().UnixNano()),
		Country: country,
		Date:    date,
		Name:    req.Name,
		Type:    holiday.TypePublic,
	}

	ctx, cancel := h.storageContext(r)
	defer cancel()

	if err := h.Holidays.SaveHoliday(ctx, hol); err != nil {
		h.writeStorageError(w, err, "Failed to create holiday")
		return
	}
	h.Calendar.Custom.Put(hol)
	metrics.IncHolidayChange("create")

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"holiday": hol.ID,
	})
}

// DeleteHoliday removes a custom holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := h.storageContext(r)
	defer cancel()

	if err := h.Holidays.DeleteHoliday(ctx, id); err != nil {
		h.writeStorageError(w, err, "Failed to delete holiday")
		return
	}
	h.Calendar.Custom.Remove(id)
	metrics.IncHolidayChange("delete")

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HELPERS
// =============================================================================

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, settings.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, settings.ErrNotFound), errors.Is(err, holiday.ErrHolidayNotFound):
		return http.StatusNotFound
	case errors.Is(err, holiday.ErrUnsupportedCountry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeStorageError renders a storage failure. Not-found errors use the
// domain message so clients can tell "no settings yet" from a failure.
func (h *Handler) writeStorageError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	switch {
	case errors.Is(err, settings.ErrNotFound):
		writeError(w, status, "User settings not found", nil)
	case errors.Is(err, holiday.ErrHolidayNotFound):
		writeError(w, status, "Holiday not found", nil)
	default:
		if status >= http.StatusInternalServerError {
			h.Log.Error(message, zap.Error(err))
		}
		writeError(w, status, message, err)
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *settings.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid user settings", Details: verr.Fields})
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid user settings", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
