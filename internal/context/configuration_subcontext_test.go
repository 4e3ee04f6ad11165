package context

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	ctx := NewTestContext()
	require.NoError(t, ctx.LoadDefaults())

	assert.Equal(t, DefaultHistoryCap, ctx.GetConfigInt(ConfigKeyHistoryCap, 0))
	assert.Equal(t, DefaultHistoryWindow, ctx.GetConfigInt(ConfigKeyHistoryWindow, 0))
	assert.Equal(t, DefaultRecentWorksCap, ctx.GetConfigInt(ConfigKeyRecentWorksCap, 0))
	assert.Equal(t, DefaultHTTPTimeoutSec, ctx.GetConfigInt(ConfigKeyHTTPTimeout, 0))

	origins := ctx.AllowedOrigins()
	assert.Contains(t, origins, "https://studio.makerhost.com")
	assert.Contains(t, origins, "https://staging.studio.makerhost.com")
}

func TestGetConfigInt(t *testing.T) {
	ctx := NewTestContext()

	assert.Equal(t, 7, ctx.GetConfigInt("UNSET_KEY", 7))

	ctx.SetConfigValue("SOME_KEY", "42")
	assert.Equal(t, 42, ctx.GetConfigInt("SOME_KEY", 7))

	ctx.SetConfigValue("SOME_KEY", " 13 ")
	assert.Equal(t, 13, ctx.GetConfigInt("SOME_KEY", 7))

	ctx.SetConfigValue("SOME_KEY", "not a number")
	assert.Equal(t, 7, ctx.GetConfigInt("SOME_KEY", 7))
}

func TestApplyConfiguredLimits(t *testing.T) {
	ctx := NewTestContext()
	ctx.SetConfigValue(ConfigKeyHistoryCap, "12")
	ctx.SetConfigValue(ConfigKeyHistoryWindow, "4")
	ctx.SetConfigValue(ConfigKeyRecentWorksCap, "8")

	ctx.ApplyConfiguredLimits()

	retained, window := ctx.HistoryLimits()
	assert.Equal(t, 12, retained)
	assert.Equal(t, 4, window)
}

func TestAllowedOrigins_ParsesAndTrims(t *testing.T) {
	ctx := NewTestContext()
	ctx.SetConfigValue(ConfigKeyAllowedOrigins, " https://a.example.com , https://b.example.com ,, ")

	origins := ctx.AllowedOrigins()
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, origins)

	ctx.SetConfigValue(ConfigKeyAllowedOrigins, "")
	assert.Empty(t, ctx.AllowedOrigins())
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STUDIO_BASE_URL=https://studio.example.com\nSTUDIO_HISTORY_CAP=20\n"), 0o644))

	ctx := NewTestContext()
	require.NoError(t, ctx.loadDotEnvFile(envPath))

	base, ok := ctx.GetConfigValue(ConfigKeyBaseURL)
	assert.True(t, ok)
	assert.Equal(t, "https://studio.example.com", base)
	assert.Equal(t, 20, ctx.GetConfigInt(ConfigKeyHistoryCap, 0))
}

func TestDotEnvLoadersSkipInTestMode(t *testing.T) {
	ctx := NewTestContext()

	// Test mode never reads the real user config or working directory.
	require.NoError(t, ctx.LoadConfigDotEnv())
	require.NoError(t, ctx.LoadLocalDotEnv())
	require.NoError(t, ctx.LoadEnvironmentVariables())

	_, ok := ctx.GetConfigValue(ConfigKeyBaseURL)
	assert.False(t, ok)
}

func TestSetConfigMap(t *testing.T) {
	ctx := NewTestContext()
	ctx.SetConfigValue("OLD_KEY", "old")

	ctx.SetConfigMap(map[string]string{"NEW_KEY": "new"})

	_, ok := ctx.GetConfigValue("OLD_KEY")
	assert.False(t, ok)
	value, ok := ctx.GetConfigValue("NEW_KEY")
	assert.True(t, ok)
	assert.Equal(t, "new", value)
}
