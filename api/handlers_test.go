/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Dashboard (missing settings, computed figures, ?at override)
- Settings validation and round trip
- Holiday listing and custom holiday lifecycle
- Authentication and error mapping
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/auth"
	"github.com/warp/earnings-engine/holiday"
	"github.com/warp/earnings-engine/settings"
	"github.com/warp/earnings-engine/store/memory"
)

const czSettingsJSON = `{"mandayRate":7600,"currency":"CZK","vatRate":0,"country":"CZ",
	"timeZone":"Europe/Prague","workHoursStart":"9","workHoursEnd":"17"}`

type testServer struct {
	handler *Handler
	store   *memory.Store
	router  http.Handler
}

// newTestServer wires a memory-backed server whose clock reads
// 2025-07-01 10:00 in Prague, authenticating everyone as devUser.
func newTestServer(t *testing.T, devUser string) *testServer {
	t.Helper()
	store := memory.New()
	calendar := holiday.NewMerged(holiday.NewRules(nil), holiday.NewCustom())
	h := NewHandler(store, store, calendar, nil)
	h.Now = func() time.Time { return time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC) }

	router := NewRouter(h, RouterConfig{
		Auth: auth.NewMiddleware([]byte("test-secret"), devUser),
	})
	return &testServer{handler: h, store: store, router: router}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestGetDashboard_NoSettings(t *testing.T) {
	srv := newTestServer(t, "u1")

	resp := srv.do(t, http.MethodGet, "/api/dashboard", "")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":"User settings not found"}`, resp.Body.String())
}

func TestGetDashboard_ComputesFigures(t *testing.T) {
	// GIVEN: CZ settings without VAT, clock at Jul 1 2025 10:00 Prague
	srv := newTestServer(t, "u1")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/settings", czSettingsJSON).Code)

	// WHEN: the dashboard is requested
	resp := srv.do(t, http.MethodGet, "/api/dashboard", "")

	// THEN: one hour of an 8h day has accrued
	require.Equal(t, http.StatusOK, resp.Code)
	dash := decode[DashboardDTO](t, resp)

	assert.Equal(t, "2025-07-01T10:00:00+02:00", dash.Calendar.Now)
	assert.False(t, dash.Calendar.IsWeekend)
	assert.False(t, dash.Calendar.IsHoliday)
	assert.True(t, dash.Calendar.IsEarningTime)
	assert.Equal(t, 23, dash.Calendar.WorkingDaysInMonth)

	assert.Equal(t, 950.0, dash.Earnings.CurrentEarnings)
	assert.Equal(t, 174800.0, dash.Earnings.MaximumEarnings)
	assert.Equal(t, 7600.0, dash.Earnings.EarningsGrowthRate.PerDay)
	assert.Equal(t, 950.0, dash.Earnings.EarningsGrowthRate.PerHour)
	assert.Equal(t, 15.83, dash.Earnings.EarningsGrowthRate.PerMinute)
	assert.Equal(t, 0.26, dash.Earnings.EarningsGrowthRate.PerSecond)
	assert.False(t, dash.Earnings.UseVAT)
	assert.Equal(t, "CZK", dash.Earnings.Currency)

	assert.Equal(t, "9:00", dash.Settings.WorkHoursStart)
}

func TestGetDashboard_WithVAT(t *testing.T) {
	srv := newTestServer(t, "u1")
	body := strings.Replace(czSettingsJSON, `"vatRate":0`, `"vatRate":0.21`, 1)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/settings", body).Code)

	dash := decode[DashboardDTO](t, srv.do(t, http.MethodGet, "/api/dashboard", ""))

	assert.True(t, dash.Earnings.UseVAT)
	assert.Equal(t, 1149.5, dash.Earnings.CurrentEarnings)
	assert.Equal(t, 211508.0, dash.Earnings.MaximumEarnings)
	assert.Equal(t, 9196.0, dash.Earnings.EarningsGrowthRate.PerDay)
}

func TestGetDashboard_AtOverride(t *testing.T) {
	srv := newTestServer(t, "u1")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/settings", czSettingsJSON).Code)

	// Saturday Jul 5: four full working days so far.
	resp := srv.do(t, http.MethodGet, "/api/dashboard?at=2025-07-05T12:00:00%2B02:00", "")
	require.Equal(t, http.StatusOK, resp.Code)
	dash := decode[DashboardDTO](t, resp)

	assert.True(t, dash.Calendar.IsWeekend)
	assert.False(t, dash.Calendar.IsEarningTime)
	assert.Equal(t, 30400.0, dash.Earnings.CurrentEarnings)

	bad := srv.do(t, http.MethodGet, "/api/dashboard?at=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_RoundTrip(t *testing.T) {
	srv := newTestServer(t, "u1")

	resp := srv.do(t, http.MethodGet, "/api/settings", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = srv.do(t, http.MethodPost, "/api/settings", czSettingsJSON)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message":"User settings updated successfully"}`, resp.Body.String())

	resp = srv.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"mandayRate":7600,"currency":"CZK","vatRate":0,"country":"CZ",
		"timeZone":"Europe/Prague","workHoursStart":"9:00","workHoursEnd":"17:00"}`, resp.Body.String())
}

func TestSettings_ScopedPerUser(t *testing.T) {
	srv := newTestServer(t, "u1")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/settings", czSettingsJSON).Code)

	token, err := auth.IssueJWT("u2", []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	srv.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"short currency", strings.Replace(czSettingsJSON, `"CZK"`, `"CZ"`, 1), "currency"},
		{"vat above one", strings.Replace(czSettingsJSON, `"vatRate":0`, `"vatRate":1.5`, 1), "vatRate"},
		{"rate as string", strings.Replace(czSettingsJSON, `7600`, `"7600"`, 1), "mandayRate"},
		{"bad hour", strings.Replace(czSettingsJSON, `"17"`, `"5pm"`, 1), "workHoursEnd"},
		{"country without rules", strings.Replace(czSettingsJSON, `"CZ"`, `"XX"`, 1), "country"},
		{"not json", `mandayRate=7600`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, "u1")

			resp := srv.do(t, http.MethodPost, "/api/settings", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code)

			var out struct {
				Error   string                `json:"error"`
				Details []settings.FieldError `json:"details"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
			assert.Equal(t, "Invalid user settings", out.Error)
			assert.True(t, (&settings.ValidationError{Fields: out.Details}).Has(tt.field), "%v", out.Details)

			// Nothing was stored.
			_, err := srv.store.Get(context.Background(), "u1")
			assert.ErrorIs(t, err, settings.ErrNotFound)
		})
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestListHolidays(t *testing.T) {
	srv := newTestServer(t, "u1")

	resp := srv.do(t, http.MethodGet, "/api/holidays?country=cz&year=2025", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Country  string       `json:"country"`
		Year     int          `json:"year"`
		Holidays []HolidayDTO `json:"holidays"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "CZ", out.Country)
	assert.Equal(t, 2025, out.Year)

	dates := make([]string, len(out.Holidays))
	for i, h := range out.Holidays {
		dates[i] = h.Date
	}
	assert.Contains(t, dates, "2025-07-06")
	assert.Contains(t, dates, "2025-12-24")
}

func TestListHolidays_BadInput(t *testing.T) {
	srv := newTestServer(t, "u1")

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodGet, "/api/holidays", "").Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodGet, "/api/holidays?country=CZ&year=abc", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, srv.do(t, http.MethodGet, "/api/holidays?country=XX", "").Code)
}

func TestCustomHoliday_Lifecycle(t *testing.T) {
	// GIVEN: CZ settings and a company closure on Friday Aug 15 2025
	srv := newTestServer(t, "u1")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/settings", czSettingsJSON).Code)

	resp := srv.do(t, http.MethodPost, "/api/holidays", `{"country":"cz","date":"2025-08-15","name":"Company closure"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	created := decode[map[string]string](t, resp)
	id := created["holiday"]
	require.NotEmpty(t, id)

	// WHEN: the dashboard is evaluated on that day
	at := "/api/dashboard?at=2025-08-15T10:00:00%2B02:00"
	dash := decode[DashboardDTO](t, srv.do(t, http.MethodGet, at, ""))

	// THEN: it is a holiday and no longer a working day
	assert.True(t, dash.Calendar.IsHoliday)
	assert.False(t, dash.Calendar.IsEarningTime)
	assert.Equal(t, 20, dash.Calendar.WorkingDaysInMonth)

	stored, err := srv.store.ListHolidays(context.Background(), "CZ")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// Deleting restores the working day.
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodDelete, "/api/holidays/"+id, "").Code)
	dash = decode[DashboardDTO](t, srv.do(t, http.MethodGet, at, ""))
	assert.False(t, dash.Calendar.IsHoliday)
	assert.Equal(t, 21, dash.Calendar.WorkingDaysInMonth)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, "/api/holidays/"+id, "").Code)
}

func TestCreateHoliday_Invalid(t *testing.T) {
	srv := newTestServer(t, "u1")

	tests := []struct {
		body string
		want int
	}{
		{`{`, http.StatusBadRequest},
		{`{"country":"CZ","date":"2025-08-15"}`, http.StatusBadRequest},
		{`{"country":"CZ","date":"15.8.2025","name":"x"}`, http.StatusBadRequest},
		{`{"country":"XX","date":"2025-08-15","name":"x"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		resp := srv.do(t, http.MethodPost, "/api/holidays", tt.body)
		assert.Equal(t, tt.want, resp.Code, tt.body)
	}
}

// =============================================================================
// AUTH, HEALTH, ERROR MAPPING
// =============================================================================

func TestAPI_RequiresIdentity(t *testing.T) {
	srv := newTestServer(t, "")

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/dashboard", "").Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/healthz", "").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{settings.ErrNotFound, http.StatusNotFound},
		{&settings.ValidationError{}, http.StatusBadRequest},
		{fmt.Errorf("lookup: %w", &holiday.UnsupportedCountryError{Country: "XX"}), http.StatusUnprocessableEntity},
		{holiday.ErrHolidayNotFound, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

type slowStore struct{ settings.Store }

func (slowStore) Get(ctx context.Context, _ string) (settings.UserSettings, error) {
	<-ctx.Done()
	return settings.UserSettings{}, ctx.Err()
}

func TestGetDashboard_StorageTimeout(t *testing.T) {
	srv := newTestServer(t, "u1")
	srv.handler.Settings = slowStore{}
	srv.handler.Timeout = 10 * time.Millisecond

	resp := srv.do(t, http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusGatewayTimeout, resp.Code)
}
