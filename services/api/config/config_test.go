package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DATABASE_URL", "IRVE_CLEAN_PATH", "IRVE_GEOJSON_PATH", "IRVE_POPULATION_PATH",
		"PORT", "API_PORT", "API_BEARER_TOKEN", "API_DEFAULT_TOP", "API_MAP_LIMIT", "API_DC_SHARE_MIN_POINTS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/irve_clean.parquet", cfg.CleanPath)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, 10, cfg.DefaultTop)
	assert.Equal(t, 5000, cfg.MapLimit)
	assert.Equal(t, 20, cfg.MinDCPoints)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("IRVE_CLEAN_PATH", "/srv/irve_clean.csv")
	t.Setenv("API_DEFAULT_TOP", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr())
	assert.Equal(t, "/srv/irve_clean.csv", cfg.CleanPath)
	assert.Equal(t, 15, cfg.DefaultTop)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	_, err := Load()
	assert.ErrorContains(t, err, "PORT")

	clearEnv(t)
	t.Setenv("API_MAP_LIMIT", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "API_MAP_LIMIT")
}
