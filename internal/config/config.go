package config

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"corromics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AnalysisConfig holds the knobs of one correlation + FDR session.
type AnalysisConfig struct {
	Seed              int64         `toml:"seed"`
	ScoreMin          float64       `toml:"score_min"`
	ScoreMax          float64       `toml:"score_max"`
	BinWidth          float64       `toml:"bin_width"`
	HistogramBinWidth float64       `toml:"histogram_bin_width"`
	Thresholds        []float64     `toml:"thresholds"`
	Tolerance         float64       `toml:"tolerance"`
	Epsilon           float64       `toml:"epsilon"`
	ZeroDenominator   string        `toml:"zero_denominator"`
	Workers           int           `toml:"workers"`
	TaskTimeout       time.Duration `toml:"task_timeout"`
	DropZeroRows      bool          `toml:"drop_zero_rows"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string `toml:"port"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
	MaxAnalyses  int    `toml:"max_analyses"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Zero-denominator policies accepted by the FDR estimator.
var zeroDenominatorPolicies = []string{"nan", "zero", "one"}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Seed:              42,
			ScoreMin:          -1,
			ScoreMax:          1,
			BinWidth:          0.001,
			HistogramBinWidth: 0.1,
			Thresholds:        []float64{10, 15, 20},
			Tolerance:         0.8,
			Epsilon:           0,
			ZeroDenominator:   "nan",
			Workers:           runtime.GOMAXPROCS(0),
			TaskTimeout:       0,
			DropZeroRows:      true,
		},
		Server: ServerConfig{
			Port:         "8080",
			MaxBodyBytes: 64 << 20,
			MaxAnalyses:  32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment, in that order, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "config file %s", path))
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse %s", path))
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// ApplyEnvOverrides replaces values for which an environment variable is set.
func (c *Config) ApplyEnvOverrides() {
	a := &c.Analysis
	a.Seed = getEnvInt64OrDefault("CORROMICS_SEED", a.Seed)
	a.Workers = getEnvIntOrDefault("CORROMICS_WORKERS", a.Workers)
	a.BinWidth = getEnvFloatOrDefault("CORROMICS_BIN_WIDTH", a.BinWidth)
	a.TaskTimeout = getEnvDurationOrDefault("CORROMICS_TASK_TIMEOUT", a.TaskTimeout)
	a.ZeroDenominator = strings.ToLower(getEnvOrDefault("CORROMICS_ZERO_DENOMINATOR", a.ZeroDenominator))
	a.DropZeroRows = getEnvBoolOrDefault("CORROMICS_DROP_ZERO_ROWS", a.DropZeroRows)

	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Logging.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", c.Logging.Level))
	c.Logging.Format = strings.ToLower(getEnvOrDefault("LOG_FORMAT", c.Logging.Format))
}

// maxBins matches the cap the FDR estimator enforces.
const maxBins = 1_000_000

func checkBinWidth(min, max, width float64) string {
	span := max - min
	n := math.Round(span / width)
	switch {
	case width > span:
		return "is wider than the score range"
	case n > maxBins:
		return "yields more than 1000000 bins"
	case math.Abs(n*width-span) > 1e-9*span:
		return "does not divide the score range evenly"
	}
	return ""
}

// Validate rejects settings the analysis cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	if !(a.BinWidth > 0) || math.IsInf(a.BinWidth, 0) {
		return errors.ConfigInvalid("bin_width must be positive")
	}
	if !(a.HistogramBinWidth > 0) || math.IsInf(a.HistogramBinWidth, 0) {
		return errors.ConfigInvalid("histogram_bin_width must be positive")
	}
	if !(a.ScoreMin < a.ScoreMax) {
		return errors.ConfigInvalid("score_min must be below score_max")
	}
	if msg := checkBinWidth(a.ScoreMin, a.ScoreMax, a.BinWidth); msg != "" {
		return errors.ConfigInvalid("bin_width " + msg)
	}
	if msg := checkBinWidth(a.ScoreMin, a.ScoreMax, a.HistogramBinWidth); msg != "" {
		return errors.ConfigInvalid("histogram_bin_width " + msg)
	}
	if a.Tolerance < 0 {
		return errors.ConfigInvalid("tolerance cannot be negative")
	}
	if a.Epsilon < 0 {
		return errors.ConfigInvalid("epsilon cannot be negative")
	}
	for _, t := range a.Thresholds {
		if t < 0 || t > 100 {
			return errors.ConfigInvalid("thresholds are percentages between 0 and 100")
		}
	}
	if !contains(zeroDenominatorPolicies, a.ZeroDenominator) {
		return errors.ConfigInvalid("zero_denominator must be one of nan, zero, one")
	}
	if a.Workers < 0 {
		return errors.ConfigInvalid("workers cannot be negative")
	}
	if a.TaskTimeout < 0 {
		return errors.ConfigInvalid("task_timeout cannot be negative")
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.ConfigInvalid("max_body_bytes must be positive")
	}
	if c.Server.MaxAnalyses <= 0 {
		return errors.ConfigInvalid("max_analyses must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return errors.ConfigInvalid("log format must be json or console")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
