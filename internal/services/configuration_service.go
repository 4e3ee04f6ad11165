// Package services provides configuration orchestration for StudioShell.
package services

import (
	"fmt"

	studioctx "studioshell/internal/context"
	"studioshell/pkg/studiotypes"
)

// ConfigurationService orchestrates configuration loading in priority order:
// defaults, then config-dir .env, then local .env, then process environment.
// All loading is delegated to the context layer; this service holds only the
// ordering.
type ConfigurationService struct {
	initialized bool
}

// NewConfigurationService creates a new ConfigurationService instance.
func NewConfigurationService() *ConfigurationService {
	return &ConfigurationService{}
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// Initialize loads configuration from all sources and applies configured
// limits to the live state holders. Must run before services that read the
// configuration map.
func (c *ConfigurationService) Initialize(ctx studiotypes.Context) error {
	if c.initialized {
		return nil
	}

	sc, ok := ctx.(*studioctx.StudioContext)
	if !ok {
		return fmt.Errorf("configuration service requires a studio context")
	}

	if err := sc.LoadDefaults(); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := sc.LoadConfigDotEnv(); err != nil {
		return fmt.Errorf("failed to load config .env: %w", err)
	}
	if err := sc.LoadLocalDotEnv(); err != nil {
		return fmt.Errorf("failed to load local .env: %w", err)
	}
	if err := sc.LoadEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	sc.ApplyConfiguredLimits()

	toolsFile, _ := sc.GetConfigValue(studioctx.ConfigKeyToolsFile)
	if err := sc.LoadToolCatalog(toolsFile); err != nil {
		return fmt.Errorf("failed to load tool catalog: %w", err)
	}

	c.initialized = true
	return nil
}
