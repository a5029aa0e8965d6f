package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DEV_USER_ID", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendSQLite, cfg.DataBackend)
	assert.Equal(t, 5*time.Minute, cfg.SettingsCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.SettingsTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/earnings")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://app.example.com")
	t.Setenv("SETTINGS_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.DataBackend)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 750*time.Millisecond, cfg.SettingsTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DataBackend:     BackendMemory,
		DevUserID:       "local",
		SettingsTimeout: time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.DataBackend = "mongo" }, "unknown DATA_BACKEND"},
		{"postgres without url", func(c *Config) { c.DataBackend = BackendPostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.DataBackend = BackendSQLite }, "SQLITE_PATH"},
		{"no identity", func(c *Config) { c.DevUserID = "" }, "JWT_SECRET"},
		{"zero timeout", func(c *Config) { c.SettingsTimeout = 0 }, "SETTINGS_TIMEOUT"},
		{"unknown log level", func(c *Config) { c.LogLevel = "warning" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
