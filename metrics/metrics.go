package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "earnings_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	dashboardTotal   *prometheus.CounterVec
	dashboardLatency *prometheus.HistogramVec

	settingsUpdates *prometheus.CounterVec
	settingsCache   *prometheus.CounterVec

	holidayChanges *prometheus.CounterVec
)

// Init registers the service metrics with the default registry.
// Observers are no-ops until Init has run.
func Init() {
	registerOnce.Do(func() {
		dashboardTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dashboard_requests_total",
				Help: "Total dashboard computations by result",
			},
			[]string{"result"},
		)
		dashboardLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dashboard_latency_seconds",
				Help:    "Dashboard computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		settingsUpdates = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settings_updates_total",
				Help: "Total settings updates by result",
			},
			[]string{"result"},
		)
		settingsCache = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settings_cache_total",
				Help: "Settings cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		holidayChanges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "custom_holiday_changes_total",
				Help: "Custom holiday changes by action",
			},
			[]string{"action"},
		)

		prometheus.MustRegister(
			dashboardTotal,
			dashboardLatency,
			settingsUpdates,
			settingsCache,
			holidayChanges,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDashboard records a dashboard computation.
func ObserveDashboard(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if dashboardTotal != nil {
		dashboardTotal.WithLabelValues(result).Inc()
	}
	if dashboardLatency != nil {
		dashboardLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncSettingsUpdate counts a settings write attempt.
func IncSettingsUpdate(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if settingsUpdates != nil {
		settingsUpdates.WithLabelValues(result).Inc()
	}
}

func IncSettingsCacheHit() {
	if settingsCache != nil {
		settingsCache.WithLabelValues("hit").Inc()
	}
}

func IncSettingsCacheMiss() {
	if settingsCache != nil {
		settingsCache.WithLabelValues("miss").Inc()
	}
}

// IncHolidayChange counts custom holiday creates and deletes.
func IncHolidayChange(action string) {
	if action == "" {
		action = "unknown"
	}
	if holidayChanges != nil {
		holidayChanges.WithLabelValues(action).Inc()
	}
}
