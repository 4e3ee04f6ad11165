// Package context provides the tool catalog for StudioShell.
// Each studio tool surface registers an identifier, a display title, and
// preference fields forwarded with every exchange. A built-in catalog ships
// with the shell; STUDIO_TOOLS_FILE points at a YAML override.
package context

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"studioshell/pkg/studiotypes"
)

// defaultToolCatalog is the built-in catalog used when no override file is
// configured.
const defaultToolCatalog = `
tools:
  - id: brand_copy
    title: Brand Copy Studio
    prefs:
      voice: brand
  - id: listing_draft
    title: Listing Draft Studio
    prefs:
      format: marketplace
  - id: transaction_helper
    title: Transaction Helper
    prefs:
      tone: professional
`

type toolCatalogFile struct {
	Tools []studiotypes.ToolConfig `yaml:"tools"`
}

// LoadToolCatalog parses the tool catalog from path, or the built-in catalog
// when path is empty. The first tool becomes active.
func (c *StudioContext) LoadToolCatalog(path string) error {
	raw := []byte(defaultToolCatalog)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read tool catalog %s: %w", path, err)
		}
		raw = data
	}

	var catalog toolCatalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("failed to parse tool catalog: %w", err)
	}
	if len(catalog.Tools) == 0 {
		return fmt.Errorf("tool catalog contains no tools")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tools = make(map[string]studiotypes.ToolConfig, len(catalog.Tools))
	c.toolOrder = c.toolOrder[:0]
	for _, tool := range catalog.Tools {
		if tool.ID == "" {
			return fmt.Errorf("tool catalog entry missing id")
		}
		c.tools[tool.ID] = tool
		c.toolOrder = append(c.toolOrder, tool.ID)
	}
	c.activeTool = c.toolOrder[0]
	return nil
}

// ToolConfig returns the configuration registered for the given tool id.
func (c *StudioContext) ToolConfig(id string) (studiotypes.ToolConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tool, exists := c.tools[id]
	return tool, exists
}

// ActiveTool returns the currently selected tool configuration.
func (c *StudioContext) ActiveTool() studiotypes.ToolConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools[c.activeTool]
}

// SetActiveTool selects the tool surface the shell is driving.
func (c *StudioContext) SetActiveTool(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[id]; !exists {
		return fmt.Errorf("unknown tool '%s'", id)
	}
	c.activeTool = id
	return nil
}

// ToolIDs returns the catalog's tool identifiers in registration order.
func (c *StudioContext) ToolIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.toolOrder...)
}
