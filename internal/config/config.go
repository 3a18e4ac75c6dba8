// Package config loads and validates the pipeline configuration from
// an optional YAML file overlaid with environment variables (BG_
// prefix). The environment wins over the file; values neither source
// sets fall back to defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse" envconfig:"CLICKHOUSE"`
	Pipeline   PipelineConfig   `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// TelemetryConfig contains OpenTelemetry configuration. MetricsAddr
// is the listen address for the Prometheus scrape endpoint; empty
// leaves the endpoint off.
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	MetricsAddr    string  `yaml:"metrics_addr" envconfig:"METRICS_ADDR" validate:"omitempty,hostname_port"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// ClickHouseConfig contains staging database connection settings
type ClickHouseConfig struct {
	Host           string        `yaml:"host" envconfig:"HOST" validate:"required"`
	Port           int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	Database       string        `yaml:"database" envconfig:"DATABASE" validate:"required"`
	Username       string        `yaml:"username" envconfig:"USERNAME" validate:"required"`
	Password       string        `yaml:"password" envconfig:"PASSWORD"`
	QuoteTables    []string      `yaml:"quote_tables" envconfig:"QUOTE_TABLES"`
	MetricTables   []string      `yaml:"metric_tables" envconfig:"METRIC_TABLES"`
	SymbolTable    string        `yaml:"symbol_table" envconfig:"SYMBOL_TABLE" validate:"required"`
	DialTimeout    time.Duration `yaml:"dial_timeout" envconfig:"DIAL_TIMEOUT"`
	ReadTimeout    time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	MaxConnections int           `yaml:"max_connections" envconfig:"MAX_CONNECTIONS" validate:"gt=0"`
}

// PipelineConfig contains run parameters for the feature pipeline
type PipelineConfig struct {
	StartDate    string `yaml:"start_date" envconfig:"START_DATE" validate:"datetime=2006-01-02"`
	RegimeColumn string `yaml:"regime_column" envconfig:"REGIME_COLUMN" validate:"required"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS" validate:"gt=0,lte=64"`
	YearLength   int    `yaml:"year_length" envconfig:"YEAR_LENGTH" validate:"gt=0"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	JitterSeed   int64  `yaml:"jitter_seed" envconfig:"JITTER_SEED"`
}

// Load loads configuration from the YAML file pointed to by
// BG_CONFIG_FILE (default config.yaml, skipped when absent) overlaid
// with BG_* environment variables.
func Load() (*Config, error) {
	var cfg Config

	configFile := os.Getenv("BG_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *fileCfg
	}

	// Env overlays the file: fields without a BG_ variable keep the
	// file's value, set variables win.
	if err := envconfig.Process("BG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration with every field at its default.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills every field neither the file nor the
// environment set.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/pipeline.log"
	}

	if c.Telemetry.TraceExporter == "" {
		c.Telemetry.TraceExporter = "none"
	}
	if c.Telemetry.MetricExporter == "" {
		c.Telemetry.MetricExporter = "prometheus"
	}
	if c.Telemetry.SampleRatio == 0 {
		c.Telemetry.SampleRatio = 1.0
	}

	if c.ClickHouse.Host == "" {
		c.ClickHouse.Host = "localhost"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "bristolgate"
	}
	if c.ClickHouse.Username == "" {
		c.ClickHouse.Username = "default"
	}
	if c.ClickHouse.SymbolTable == "" {
		c.ClickHouse.SymbolTable = "symbols"
	}
	if c.ClickHouse.DialTimeout == 0 {
		c.ClickHouse.DialTimeout = 10 * time.Second
	}
	if c.ClickHouse.ReadTimeout == 0 {
		c.ClickHouse.ReadTimeout = 5 * time.Minute
	}
	if c.ClickHouse.MaxConnections == 0 {
		c.ClickHouse.MaxConnections = 10
	}

	if c.Pipeline.StartDate == "" {
		c.Pipeline.StartDate = "1950-01-01"
	}
	if c.Pipeline.RegimeColumn == "" {
		c.Pipeline.RegimeColumn = "USREC"
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 6
	}
	if c.Pipeline.YearLength == 0 {
		c.Pipeline.YearLength = 365
	}
	if c.Pipeline.OutputDir == "" {
		c.Pipeline.OutputDir = "out"
	}
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// StartTime parses the configured pipeline start date.
func (c *PipelineConfig) StartTime() (time.Time, error) {
	return time.Parse("2006-01-02", c.StartDate)
}
