package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers_NoopBeforeInit(t *testing.T) {
	if dashboardTotal != nil {
		t.Skip("metrics already initialised in this process")
	}
	assert.NotPanics(t, func() {
		ObserveDashboard(ResultSuccess, time.Millisecond)
		IncSettingsUpdate(ResultError)
		IncSettingsCacheHit()
		IncHolidayChange("create")
	})
}

func TestObservers_CountAfterInit(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(dashboardTotal.WithLabelValues(ResultError))
	ObserveDashboard(ResultError, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(dashboardTotal.WithLabelValues(ResultError)))

	hits := testutil.ToFloat64(settingsCache.WithLabelValues("hit"))
	IncSettingsCacheHit()
	assert.Equal(t, hits+1, testutil.ToFloat64(settingsCache.WithLabelValues("hit")))

	unknown := testutil.ToFloat64(holidayChanges.WithLabelValues("unknown"))
	IncHolidayChange("")
	assert.Equal(t, unknown+1, testutil.ToFloat64(holidayChanges.WithLabelValues("unknown")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	Init()
	IncSettingsUpdate(ResultSuccess)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "earnings_settings_updates_total")
}
