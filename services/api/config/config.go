package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	DatabaseURL    string
	CleanPath      string
	GeoJSONPath    string
	PopulationPath string
	Port           int
	BearerToken    string
	DefaultTop     int
	MapLimit       int
	MinDCPoints    int
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		CleanPath:   "data/irve_clean.parquet",
		Port:        8080,
		DefaultTop:  10,
		MapLimit:    5000,
		MinDCPoints: 20,
	}

	// Optional: the run history endpoint is disabled without it.
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if path := os.Getenv("IRVE_CLEAN_PATH"); path != "" {
		cfg.CleanPath = path
	}
	if cfg.CleanPath == "" {
		return cfg, errors.New("IRVE_CLEAN_PATH is required")
	}

	cfg.GeoJSONPath = os.Getenv("IRVE_GEOJSON_PATH")
	cfg.PopulationPath = os.Getenv("IRVE_POPULATION_PATH")

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"API_DEFAULT_TOP", &cfg.DefaultTop},
		{"API_MAP_LIMIT", &cfg.MapLimit},
		{"API_DC_SHARE_MIN_POINTS", &cfg.MinDCPoints},
	}
	for _, v := range ints {
		if s := os.Getenv(v.name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return cfg, fmt.Errorf("invalid %s: %s", v.name, s)
			}
			*v.dst = n
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
