package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

const (
	defaultOutputDir      = "data"
	defaultRequestTimeout = 60 * time.Second
)

// Config holds runtime configuration for the pipeline command.
type Config struct {
	InputPath          string
	OutputDir          string
	DatabaseURL        string
	KeywordsPath       string
	DepartmentRule     irve.DepartmentRule
	DCPowerThresholdKW float64
	MaxPowerKW         float64
	LatMin             float64
	LatMax             float64
	LonMin             float64
	LonMax             float64
	DropMissingPostal  bool
	RequestTimeout     time.Duration
	DryRun             bool
}

// Load reads configuration from environment variables (optionally .env).
// Command-line flags may override fields afterwards; call Validate once they
// have been applied.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.InputPath = strings.TrimSpace(os.Getenv("IRVE_INPUT_PATH"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.KeywordsPath = strings.TrimSpace(os.Getenv("IRVE_KEYWORDS_PATH"))

	cfg.OutputDir = strings.TrimSpace(os.Getenv("IRVE_OUTPUT_DIR"))
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}

	rule, ok := irve.ParseDepartmentRule(os.Getenv("IRVE_DEPARTMENT_RULE"))
	if !ok {
		return cfg, fmt.Errorf("invalid IRVE_DEPARTMENT_RULE %q (want naive or insee)", os.Getenv("IRVE_DEPARTMENT_RULE"))
	}
	cfg.DepartmentRule = rule

	floats := []struct {
		name string
		dst  *float64
		def  float64
	}{
		{"IRVE_DC_POWER_THRESHOLD_KW", &cfg.DCPowerThresholdKW, irve.DefaultOptions().DCPowerThresholdKW},
		{"IRVE_POWER_MAX_KW", &cfg.MaxPowerKW, irve.DefaultMaxPowerKW},
		{"IRVE_LAT_MIN", &cfg.LatMin, irve.DefaultLatMin},
		{"IRVE_LAT_MAX", &cfg.LatMax, irve.DefaultLatMax},
		{"IRVE_LON_MIN", &cfg.LonMin, irve.DefaultLonMin},
		{"IRVE_LON_MAX", &cfg.LonMax, irve.DefaultLonMax},
	}
	for _, f := range floats {
		*f.dst = f.def
		if v := strings.TrimSpace(os.Getenv(f.name)); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("invalid %s: %w", f.name, err)
			}
			*f.dst = n
		}
	}

	cfg.DropMissingPostal = true
	if v := strings.TrimSpace(os.Getenv("IRVE_DROP_MISSING_POSTAL")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IRVE_DROP_MISSING_POSTAL: %w", err)
		}
		cfg.DropMissingPostal = b
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("IRVE_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IRVE_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}

// Validate checks the fields that flags may have changed.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("IRVE_INPUT_PATH (or --input) is required")
	}
	if c.OutputDir == "" {
		return errors.New("IRVE_OUTPUT_DIR must not be empty")
	}
	if c.MaxPowerKW <= 0 {
		return fmt.Errorf("power ceiling must be positive, got %v", c.MaxPowerKW)
	}
	if c.LatMin >= c.LatMax || c.LonMin >= c.LonMax {
		return fmt.Errorf("empty bounding box lat [%v, %v] lon [%v, %v]", c.LatMin, c.LatMax, c.LonMin, c.LonMax)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("IRVE_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// Options builds the cleaning options, loading keyword lists when a path is
// configured.
func (c Config) Options() (irve.Options, error) {
	opts := irve.DefaultOptions()
	opts.DepartmentRule = c.DepartmentRule
	opts.DCPowerThresholdKW = c.DCPowerThresholdKW
	if c.KeywordsPath != "" {
		k, err := irve.LoadKeywords(c.KeywordsPath)
		if err != nil {
			return opts, err
		}
		opts.Keywords = k
	}
	return opts, nil
}

// Bounds returns the outlier filter thresholds.
func (c Config) Bounds() irve.Bounds {
	return irve.NewBounds(c.MaxPowerKW, c.LatMin, c.LatMax, c.LonMin, c.LonMax)
}
