package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("PTV_DEV_ID", "3000123")
	t.Setenv("PTV_API_KEY", "9c132d31-6a30-4cac-8d8b-8a1970834799")
	t.Setenv("STOP_ID", "1071")
	t.Setenv("DIRECTION_ID", "1")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1071, cfg.StopID)
	assert.Equal(t, 1, cfg.DirectionID)
	assert.Equal(t, 0, cfg.RouteType)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 120*time.Second, cfg.CycleTimeout)
	assert.False(t, cfg.SelectEarliest)
	assert.Equal(t, "terminal", cfg.DisplayDriver)
	assert.Equal(t, 250, cfg.DisplayWidth)
	assert.Equal(t, 122, cfg.DisplayHeight)
	assert.Equal(t, float64(70), cfg.FontSize)
	assert.True(t, cfg.StatusEnabled)
	assert.Equal(t, ":8081", cfg.StatusAddr)
	assert.Empty(t, cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("SELECT_EARLIEST", "true")
	t.Setenv("DISPLAY_DRIVER", "png")
	t.Setenv("STATUS_ENABLED", "false")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.True(t, cfg.SelectEarliest)
	assert.Equal(t, "png", cfg.DisplayDriver)
	assert.False(t, cfg.StatusEnabled)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Setenv("PTV_DEV_ID", "")
	t.Setenv("PTV_API_KEY", "")
	t.Setenv("STOP_ID", "flinders")
	t.Setenv("DIRECTION_ID", "")
	t.Setenv("RETRY_ATTEMPTS", "0")
	t.Setenv("STATUS_ENABLED", "maybe")

	err := Load().Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "PTV_DEV_ID is required")
	assert.Contains(t, msg, "PTV_API_KEY is required")
	assert.Contains(t, msg, `STOP_ID must be an integer, got "flinders"`)
	assert.Contains(t, msg, "DIRECTION_ID is required")
	assert.Contains(t, msg, "RETRY_ATTEMPTS must be at least 1")
	assert.Contains(t, msg, `STATUS_ENABLED must be a boolean, got "maybe"`)
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"route type", "ROUTE_TYPE", "9"},
		{"max results", "MAX_RESULTS", "0"},
		{"poll interval", "POLL_INTERVAL", "0"},
		{"retry delay", "RETRY_DELAY", "-1"},
		{"driver", "DISPLAY_DRIVER", "epd"},
		{"width", "DISPLAY_WIDTH", "0"},
		{"font", "FONT_SIZE", "0"},
		{"request timeout", "REQUEST_TIMEOUT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			assert.Error(t, Load().Validate())
		})
	}
}

func TestValidateCredentialsOnly(t *testing.T) {
	t.Setenv("PTV_DEV_ID", "3000123")
	t.Setenv("PTV_API_KEY", "secret")
	t.Setenv("STOP_ID", "")
	t.Setenv("DIRECTION_ID", "")

	cfg := Load()
	assert.NoError(t, cfg.ValidateCredentials())
	assert.Error(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STOP_ID=1071\nDIRECTION_ID=1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("DIRECTION_ID=2\n"), 0o644))
	t.Chdir(dir)

	t.Setenv("STOP_ID", "")
	t.Setenv("DIRECTION_ID", "")
	os.Unsetenv("STOP_ID")
	os.Unsetenv("DIRECTION_ID")

	LoadDotEnv()
	cfg := Load()
	assert.Equal(t, 1071, cfg.StopID)
	assert.Equal(t, 2, cfg.DirectionID)
}
