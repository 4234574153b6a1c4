package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sourcing.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://api.digikey.com", cfg.DigiKey.BaseURL)
	assert.Equal(t, "https://api.digikey.com/v1/oauth2/token", cfg.DigiKey.TokenURL)
	assert.Equal(t, "https://api.mouser.com", cfg.Mouser.BaseURL)
	assert.Equal(t, "https://s.jina.ai", cfg.News.BaseURL)
	assert.Equal(t, 3, cfg.News.MaxHeadlines)
	assert.Equal(t, 5, cfg.Lookup.TimeoutSecs)
	assert.Equal(t, 4, cfg.Lookup.MaxConcurrentParts)
	assert.Equal(t, []string{"CN", "RU"}, cfg.Risk.RiskyRegions)
	assert.InDelta(t, 0.10, cfg.Risk.LandedSurcharge, 0.001)
	assert.Equal(t, 10, cfg.Risk.BottleneckStock)
	assert.Equal(t, 20, cfg.Risk.BottleneckLeadWeeks)
	assert.InDelta(t, 10.0, cfg.Risk.DeclineThreshold, 0.001)
	assert.InDelta(t, 0.5, cfg.Risk.VolatilityThreshold, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/sourcing
risk:
  risky_regions: ["CN", "RU", "KP"]
  bottleneck_stock: 25
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/sourcing", cfg.Store.DatabaseURL)
	assert.Equal(t, []string{"CN", "RU", "KP"}, cfg.Risk.RiskyRegions)
	assert.Equal(t, 25, cfg.Risk.BottleneckStock)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 20, cfg.Risk.BottleneckLeadWeeks)
	assert.Equal(t, "https://api.mouser.com", cfg.Mouser.BaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SOURCING_MOUSER_API_KEY", "env-key")
	t.Setenv("SOURCING_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Mouser.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "nonsense", Format: "json"}))
}
