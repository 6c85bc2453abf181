package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWithFile(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("ECOM_CONFIG_FILE", path)
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	// Point at a non-existent file so only defaults apply.
	t.Setenv("ECOM_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "reports", cfg.Paths.ReportsDir)
	assert.Equal(t, 3, cfg.Analytics.RollingWindow)
	assert.Equal(t, "city_asc", cfg.Dedup.Geolocation)
	assert.Equal(t, "latest_answer", cfg.Dedup.Review)

	// Unset thresholds normalize to the documented boundaries.
	assert.Equal(t, 5.0, cfg.Analytics.Thresholds.ShippingFastMaxDays)
	assert.Equal(t, 10.0, cfg.Analytics.Thresholds.SlowShippingDays)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := loadWithFile(t, `
server:
  port: 9090
logging:
  level: debug
analytics:
  rolling_window: 6
  thresholds:
    monetary_high_min: 2500
`)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 6, cfg.Analytics.RollingWindow)
	assert.Equal(t, 2500.0, cfg.Analytics.Thresholds.MonetaryHighMin)
	// Untouched thresholds keep their defaults.
	assert.Equal(t, 4.5, cfg.Analytics.Thresholds.ReviewExcellentMin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ECOM_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ECOM_SERVER_PORT", "7070")
	t.Setenv("ECOM_PATHS_DATA_DIR", "/srv/data")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/data", cfg.Paths.DataDir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		_, err := loadWithFile(t, "logging:\n  level: shouty\n")
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		_, err := loadWithFile(t, "server:\n  port: 99999\n")
		assert.Error(t, err)
	})

	t.Run("bad dedup strategy", func(t *testing.T) {
		_, err := loadWithFile(t, "dedup:\n  review: newest_row\n")
		assert.Error(t, err)
	})

	t.Run("bad as_of instant", func(t *testing.T) {
		_, err := loadWithFile(t, "analytics:\n  as_of: last tuesday\n")
		assert.Error(t, err)
	})
}

func TestAsOfTime(t *testing.T) {
	t.Run("empty means run time", func(t *testing.T) {
		var a AnalyticsConfig
		ts, err := a.AsOfTime()
		require.NoError(t, err)
		assert.True(t, ts.IsZero())
	})

	t.Run("rfc3339 parsed", func(t *testing.T) {
		a := AnalyticsConfig{AsOf: "2018-06-01T00:00:00Z"}
		ts, err := a.AsOfTime()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC), ts.UTC())
	})
}
