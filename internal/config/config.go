// Package config loads the crossing detector's settings from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/stroke-crossings/internal/detection"
	"github.com/ironsheep/stroke-crossings/internal/imaging"
	"github.com/ironsheep/stroke-crossings/internal/logging"
)

// Environment variables read by Load.
const (
	EnvDepthLimit  = "CROSSINGS_DEPTH"
	EnvLineWidth   = "CROSSINGS_LINE_WIDTH"
	EnvDepthMetric = "CROSSINGS_DEPTH_METRIC"
	EnvWhiteLevel  = "CROSSINGS_WHITE_LEVEL"
	EnvWorkers     = "CROSSINGS_WORKERS"
	EnvAnnotate    = "CROSSINGS_ANNOTATE"
	EnvMarkerColor = "CROSSINGS_MARKER_COLOR"
	EnvLogLevel    = "CROSSINGS_LOG_LEVEL"
)

// ErrInvalidConfig is returned for unparsable or out-of-range settings.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds detector configuration.
type Config struct {
	// Detection parameters
	DepthLimit  int
	LineWidth   int
	DepthMetric detection.DepthMetric
	Workers     int

	// WhiteLevel is the gray level at or above which a sample counts as
	// paper. 255 keeps the exact "only pure white is background" rule.
	WhiteLevel uint8

	// Annotated output, disabled when AnnotatePath is empty
	AnnotatePath string
	MarkerColor  string

	LogLevel logging.Level
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		DepthLimit:  detection.DefaultDepthLimit,
		LineWidth:   detection.DefaultLineWidth,
		DepthMetric: detection.DequeueCount,
		Workers:     1,
		WhiteLevel:  imaging.WhiteLevel,
		MarkerColor: imaging.DefaultMarkerColor,
		LogLevel:    logging.LevelInfo,
	}
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from environment variables, falling back to Default
// for anything unset, and validates the result.
func Load() (*Config, error) {
	def := Default()
	cfg := &Config{
		AnnotatePath: getEnvOrDefault(EnvAnnotate, ""),
		MarkerColor:  getEnvOrDefault(EnvMarkerColor, def.MarkerColor),
	}

	var err error
	if cfg.DepthLimit, err = getEnvAsIntOrDefault(EnvDepthLimit, def.DepthLimit); err != nil {
		return nil, err
	}
	if cfg.LineWidth, err = getEnvAsIntOrDefault(EnvLineWidth, def.LineWidth); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvAsIntOrDefault(EnvWorkers, def.Workers); err != nil {
		return nil, err
	}

	white, err := getEnvAsIntOrDefault(EnvWhiteLevel, int(def.WhiteLevel))
	if err != nil {
		return nil, err
	}
	if white < 1 || white > 255 {
		return nil, fmt.Errorf("%w: %s must be between 1 and 255, got %d", ErrInvalidConfig, EnvWhiteLevel, white)
	}
	cfg.WhiteLevel = uint8(white)

	metric := strings.ToLower(getEnvOrDefault(EnvDepthMetric, def.DepthMetric.String()))
	if cfg.DepthMetric, err = detection.ParseDepthMetric(metric); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvDepthMetric, err)
	}

	level := getEnvOrDefault(EnvLogLevel, def.LogLevel.String())
	if cfg.LogLevel, err = logging.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvLogLevel, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.DepthLimit < 0 {
		return fmt.Errorf("%w: %s cannot be negative, got %d", ErrInvalidConfig, EnvDepthLimit, c.DepthLimit)
	}
	if c.LineWidth < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidConfig, EnvLineWidth, c.LineWidth)
	}
	if c.Workers < 1 || c.Workers > 256 {
		return fmt.Errorf("%w: %s must be between 1 and 256, got %d", ErrInvalidConfig, EnvWorkers, c.Workers)
	}
	if c.WhiteLevel == 0 {
		return fmt.Errorf("%w: %s must be between 1 and 255, got 0", ErrInvalidConfig, EnvWhiteLevel)
	}
	if c.AnnotatePath != "" {
		if _, err := imaging.ParseMarkerColor(c.MarkerColor); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvMarkerColor, err)
		}
	}
	return nil
}

// DetectionOptions returns the scan options described by c.
func (c *Config) DetectionOptions() detection.Options {
	return detection.Options{
		DepthLimit: c.DepthLimit,
		LineWidth:  c.LineWidth,
		Metric:     c.DepthMetric,
		Workers:    c.Workers,
	}
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default.
// A value that is set but not an integer is an error.
func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, key, valueStr)
	}

	return value, nil
}
