package context

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadToolCatalog_BuiltIn(t *testing.T) {
	ctx := New()
	require.NoError(t, ctx.LoadToolCatalog(""))

	assert.Equal(t, []string{"brand_copy", "listing_draft", "transaction_helper"}, ctx.ToolIDs())

	// First catalog entry is active.
	active := ctx.ActiveTool()
	assert.Equal(t, "brand_copy", active.ID)
	assert.Equal(t, "Brand Copy Studio", active.Title)
	assert.Equal(t, "brand", active.Prefs["voice"])
}

func TestLoadToolCatalog_OverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.yaml")
	catalog := `
tools:
  - id: custom_tool
    title: Custom Tool
    prefs:
      depth: full
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	ctx := New()
	require.NoError(t, ctx.LoadToolCatalog(path))

	assert.Equal(t, []string{"custom_tool"}, ctx.ToolIDs())
	assert.Equal(t, "Custom Tool", ctx.ActiveTool().Title)
}

func TestLoadToolCatalog_Errors(t *testing.T) {
	ctx := New()

	assert.Error(t, ctx.LoadToolCatalog("/nonexistent/tools.yaml"))

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("tools: []\n"), 0o644))
	assert.Error(t, ctx.LoadToolCatalog(empty))

	missingID := filepath.Join(dir, "missing-id.yaml")
	require.NoError(t, os.WriteFile(missingID, []byte("tools:\n  - title: No ID\n"), 0o644))
	assert.Error(t, ctx.LoadToolCatalog(missingID))
}

func TestSetActiveTool(t *testing.T) {
	ctx := NewTestContext()

	require.NoError(t, ctx.SetActiveTool("listing_draft"))
	assert.Equal(t, "listing_draft", ctx.ActiveTool().ID)

	err := ctx.SetActiveTool("nonexistent")
	assert.Error(t, err)
	assert.Equal(t, "listing_draft", ctx.ActiveTool().ID, "failed switch leaves the active tool alone")
}

func TestToolConfigLookup(t *testing.T) {
	ctx := NewTestContext()

	tool, ok := ctx.ToolConfig("transaction_helper")
	assert.True(t, ok)
	assert.Equal(t, "Transaction Helper", tool.Title)

	_, ok = ctx.ToolConfig("nonexistent")
	assert.False(t, ok)
}
