package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"debug", zap.DebugLevel, zap.DebugLevel - 1},
		{"info", zap.InfoLevel, zap.DebugLevel},
		{"INFO", zap.InfoLevel, zap.DebugLevel},
		{"Warn", zap.WarnLevel, zap.InfoLevel},
		{"error", zap.ErrorLevel, zap.WarnLevel},
	}
	for _, tt := range tests {
		log, err := New(tt.level)
		require.NoError(t, err, tt.level)
		assert.True(t, log.Core().Enabled(tt.enabled), tt.level)
		assert.False(t, log.Core().Enabled(tt.disabled), tt.level)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	for _, level := range []string{"bogus", "warning", "verbose"} {
		_, err := New(level)
		assert.ErrorContains(t, err, "invalid LOG_LEVEL", level)
	}
}

func TestMiddleware_LogsRequest(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := middleware.RequestID(Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "/api/settings", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
