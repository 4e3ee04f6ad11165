// Package context provides configuration operations for StudioShell.
// Configuration values layer in priority order: defaults, then config-dir .env,
// then local .env, then process environment variables. All values land in the
// context configuration map; nothing reads the environment after loading.
package context

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default limits. These are configuration, not invariants: .env files and
// environment variables override them.
const (
	DefaultHistoryCap     = 30
	DefaultHistoryWindow  = 10
	DefaultRecentWorksCap = 50
	DefaultHTTPTimeoutSec = 30
)

// Configuration keys recognized by StudioShell.
const (
	ConfigKeyBaseURL        = "STUDIO_BASE_URL"
	ConfigKeyCSRFToken      = "STUDIO_CSRF_TOKEN"
	ConfigKeyHistoryCap     = "STUDIO_HISTORY_CAP"
	ConfigKeyHistoryWindow  = "STUDIO_HISTORY_WINDOW"
	ConfigKeyRecentWorksCap = "STUDIO_RECENT_WORKS_CAP"
	ConfigKeyAllowedOrigins = "STUDIO_ALLOWED_ORIGINS"
	ConfigKeyIdentityPipe   = "STUDIO_IDENTITY_PIPE"
	ConfigKeyHTTPTimeout    = "STUDIO_HTTP_TIMEOUT"
	ConfigKeyToolsFile      = "STUDIO_TOOLS_FILE"
	ConfigKeySourceURL      = "STUDIO_SOURCE_URL"
)

// configPrefix selects which process environment variables are loaded.
const configPrefix = "STUDIO_"

// GetConfigValue returns the configured value for key.
func (c *StudioContext) GetConfigValue(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.config[key]
	return value, exists
}

// SetConfigValue stores a configuration value.
func (c *StudioContext) SetConfigValue(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
}

// SetConfigMap replaces the whole configuration map.
func (c *StudioContext) SetConfigMap(config map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.config = make(map[string]string, len(config))
	for key, value := range config {
		c.config[key] = value
	}
}

// GetConfigInt returns the configured value for key parsed as an int, or
// fallback when unset or unparseable.
func (c *StudioContext) GetConfigInt(key string, fallback int) int {
	value, exists := c.GetConfigValue(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// LoadDefaults seeds the configuration map with built-in defaults.
func (c *StudioContext) LoadDefaults() error {
	defaults := map[string]string{
		ConfigKeyHistoryCap:     strconv.Itoa(DefaultHistoryCap),
		ConfigKeyHistoryWindow:  strconv.Itoa(DefaultHistoryWindow),
		ConfigKeyRecentWorksCap: strconv.Itoa(DefaultRecentWorksCap),
		ConfigKeyHTTPTimeout:    strconv.Itoa(DefaultHTTPTimeoutSec),
		ConfigKeyAllowedOrigins: "https://studio.makerhost.com,https://staging.studio.makerhost.com",
	}

	for key, value := range defaults {
		c.SetConfigValue(key, value)
	}
	return nil
}

// LoadConfigDotEnv loads the .env file from the user config directory, if any.
func (c *StudioContext) LoadConfigDotEnv() error {
	// Clean slate in test mode: real user config must not leak into tests.
	if c.IsTestMode() {
		return nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}

	envPath := filepath.Join(configDir, "studioshell", ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}

	return c.loadDotEnvFile(envPath)
}

// LoadLocalDotEnv loads the .env file from the working directory, if any.
func (c *StudioContext) LoadLocalDotEnv() error {
	if c.IsTestMode() {
		return nil
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	envPath := filepath.Join(workDir, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}

	return c.loadDotEnvFile(envPath)
}

// LoadEnvironmentVariables loads STUDIO_-prefixed process environment
// variables into the configuration map, overriding lower-priority sources.
func (c *StudioContext) LoadEnvironmentVariables() error {
	if c.IsTestMode() {
		return nil
	}

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.HasPrefix(parts[0], configPrefix) {
			c.SetConfigValue(parts[0], parts[1])
		}
	}
	return nil
}

// ApplyConfiguredLimits pushes configured history and recency bounds into the
// live state holders.
func (c *StudioContext) ApplyConfiguredLimits() {
	c.SetHistoryLimits(
		c.GetConfigInt(ConfigKeyHistoryCap, DefaultHistoryCap),
		c.GetConfigInt(ConfigKeyHistoryWindow, DefaultHistoryWindow),
	)
	c.SetRecentWorksCap(c.GetConfigInt(ConfigKeyRecentWorksCap, DefaultRecentWorksCap))
}

// AllowedOrigins returns the identity handshake origin allow-list.
func (c *StudioContext) AllowedOrigins() []string {
	raw, _ := c.GetConfigValue(ConfigKeyAllowedOrigins)
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// loadDotEnvFile parses a .env file and stores all values in the
// configuration map.
func (c *StudioContext) loadDotEnvFile(envPath string) error {
	data, err := os.ReadFile(envPath)
	if err != nil {
		return fmt.Errorf("failed to read .env file %s: %w", envPath, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse .env file %s: %w", envPath, err)
	}

	for key, value := range envMap {
		c.SetConfigValue(key, value)
	}
	return nil
}
