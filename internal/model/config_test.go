package model_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dy-sh/asana-tracker/internal/model"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://app.asana.com/api/1.0", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSec)
	assert.True(t, cfg.History.Enabled)
	assert.True(t, cfg.Display.ShowArchived)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)

	cfg.API.TimeoutSec = 10
	cfg.Display.ShowArchived = false
	cfg.Display.DefaultWorkspace = "Acme"
	cfg.History.Enabled = false

	require.NoError(t, model.SaveConfig(path, cfg))

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.API.TimeoutSec)
	assert.False(t, loaded.Display.ShowArchived)
	assert.Equal(t, "Acme", loaded.Display.DefaultWorkspace)
	assert.False(t, loaded.History.Enabled)
}
