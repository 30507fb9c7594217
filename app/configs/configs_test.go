package configs

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{DriverMySQL, "mysql"},
		{DriverPostgres, "postgres"},
		{DriverSQLite, "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(ENV{DBDriver: tt.driver, DBHost: "127.0.0.1", DBName: "catalog", DBPath: "catalog.db"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := Dialector(ENV{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", 5 * time.Second},
		{"valid", "90s", 90 * time.Second},
		{"invalid", "soon", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CATALOG_TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getEnvDuration("CATALOG_TEST_DURATION", 5*time.Second))
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CANCEL_WINDOW", "24h")
	t.Setenv("DB_MAX_RETRIES", "0")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	env := LoadEnv()
	assert.Empty(t, buf.String(), "no output without a .env file")
	assert.Equal(t, DriverSQLite, env.DBDriver)
	assert.Equal(t, 24*time.Hour, env.CancelWindow)
	assert.Equal(t, uint(1), env.DBMaxRetries)
	assert.Empty(t, env.LogFormat)

	t.Setenv("CANCEL_WINDOW", "")
	assert.Zero(t, LoadEnv().CancelWindow)
}

func TestLogFormat(t *testing.T) {
	tests := []struct {
		appEnv, format, want string
	}{
		{"development", "", "console"},
		{"", "", "console"},
		{"production", "", "json"},
		{"production", "console", "console"},
		{"development", "json", "json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logFormat(ENV{APP_ENV: tt.appEnv, LogFormat: tt.format}), "%+v", tt)
	}
}
