// Package config loads application configuration from environment
// variables (prefix ECOM) merged with an optional YAML file, and validates
// the result.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"ecomcli/internal/analytics"
	"ecomcli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Dedup     DedupConfig     `yaml:"dedup" envconfig:"DEDUP"`
}

// ServerConfig contains the reporting API server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/ecomcli.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports" validate:"required"`
}

// AnalyticsConfig contains the recognized analytical options: the recency
// reference instant, the rolling window width and the tier thresholds.
type AnalyticsConfig struct {
	// AsOf is the reference instant for recency, RFC 3339. Empty means
	// "now at run time".
	AsOf          string               `yaml:"as_of" envconfig:"AS_OF"`
	RollingWindow int                  `yaml:"rolling_window" envconfig:"ROLLING_WINDOW" default:"3" validate:"min=1"`
	Thresholds    analytics.Thresholds `yaml:"thresholds" envconfig:"THRESHOLDS"`
}

// AsOfTime parses the configured as-of instant.
func (a AnalyticsConfig) AsOfTime() (time.Time, error) {
	if a.AsOf == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, a.AsOf)
	if err != nil {
		return time.Time{}, errors.NewConfigError(fmt.Sprintf("invalid as_of instant %q", a.AsOf), err)
	}
	return t, nil
}

// DedupConfig selects the tie-break strategy per deduplicated entity.
// Only the documented strategies exist today; the option is configuration
// so external callers can pin them explicitly.
type DedupConfig struct {
	Geolocation string `yaml:"geolocation" envconfig:"GEOLOCATION" default:"city_asc" validate:"oneof=city_asc"`
	Review      string `yaml:"review" envconfig:"REVIEW" default:"latest_answer" validate:"oneof=latest_answer"`
}

// Load loads configuration from environment variables and an optional
// config file (ECOM_CONFIG_FILE, default config.yaml).
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ECOM", &cfg); err != nil {
		return nil, errors.NewConfigError("load config from environment", err)
	}

	configFile := os.Getenv("ECOM_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("load config file %s", configFile), err)
		}
	}

	cfg.Analytics.Thresholds.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFromFile overlays YAML values onto the config.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}
	if _, err := c.Analytics.AsOfTime(); err != nil {
		return err
	}
	return nil
}
