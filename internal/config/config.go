// Package config provides configuration management for the reporting pipeline.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Dedup key constants.
const (
	// DedupKeyTitle deduplicates by the Title column (lightweight variant).
	DedupKeyTitle = "Title"
	// DedupKeyDOI deduplicates by the DOI column (rich variant).
	DedupKeyDOI = "DOI"
)

// Column mode constants.
const (
	// ColumnModePermissive retains unrecognized columns through the merge.
	ColumnModePermissive = "permissive"
	// ColumnModeStrict drops every column outside the canonical schema.
	ColumnModeStrict = "strict"
)

// Config holds all configuration for the reporting pipeline.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Paths contains input and output directory settings.
	Paths PathsConfig `mapstructure:"paths"`
	// Pipeline contains merge/dedup/aggregation settings.
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	// Charts contains chart styling settings.
	Charts ChartsConfig `mapstructure:"charts"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading the request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// UploadRateLimit is the sustained uploads-per-second limit.
	UploadRateLimit float64 `mapstructure:"upload_rate_limit"`
	// UploadRateBurst is the upload rate limiter burst size.
	UploadRateBurst int `mapstructure:"upload_rate_burst"`
	// MaxUploadBytes caps the size of one multipart upload request.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// PathsConfig holds directory configuration. All three directories are
// created at startup when absent.
type PathsConfig struct {
	// InputDir is the directory holding the CSV exports to process.
	InputDir string `mapstructure:"input_dir"`
	// TableDir is the directory receiving CSV/XLSX artifacts.
	TableDir string `mapstructure:"table_dir"`
	// ChartDir is the directory receiving PNG artifacts.
	ChartDir string `mapstructure:"chart_dir"`
}

// PipelineConfig holds merge/dedup/aggregation configuration.
type PipelineConfig struct {
	// DedupKey is the deduplication key column (Title or DOI).
	DedupKey string `mapstructure:"dedup_key"`
	// ColumnMode controls unknown-column retention (permissive or strict).
	ColumnMode string `mapstructure:"column_mode"`
	// TopNKeywords is the number of top keywords in charts and the
	// co-occurrence matrix.
	TopNKeywords int `mapstructure:"top_n_keywords"`
	// EnableHeatmap gates the keyword co-occurrence heatmap.
	EnableHeatmap bool `mapstructure:"enable_heatmap"`
	// PerSourceCharts gates the per-source pre-processing charts.
	PerSourceCharts bool `mapstructure:"per_source_charts"`
}

// ChartsConfig holds chart styling configuration.
type ChartsConfig struct {
	// Width and Height are the chart dimensions in inches.
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	// BarWidth is the bar width in points.
	BarWidth float64 `mapstructure:"bar_width"`
	// HeatPaletteSize is the number of colors in the heatmap palette.
	HeatPaletteSize int `mapstructure:"heat_palette_size"`
	// WordCloudWidth and WordCloudHeight are word-cloud pixel dimensions.
	WordCloudWidth  int `mapstructure:"wordcloud_width"`
	WordCloudHeight int `mapstructure:"wordcloud_height"`
	// FontFile is the TTF font used by the word-cloud renderer. Word
	// clouds are skipped when empty.
	FontFile string `mapstructure:"font_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes all metric names.
	Namespace string `mapstructure:"namespace"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/research-helper")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.upload_rate_limit", 1.0)
	v.SetDefault("server.upload_rate_burst", 3)
	v.SetDefault("server.max_upload_bytes", 64<<20)

	// Paths defaults
	v.SetDefault("paths.input_dir", "csv_database")
	v.SetDefault("paths.table_dir", "output_csvs")
	v.SetDefault("paths.chart_dir", "output_pngs")

	// Pipeline defaults
	v.SetDefault("pipeline.dedup_key", DedupKeyDOI)
	v.SetDefault("pipeline.column_mode", ColumnModePermissive)
	v.SetDefault("pipeline.top_n_keywords", 20)
	v.SetDefault("pipeline.enable_heatmap", false)
	v.SetDefault("pipeline.per_source_charts", false)

	// Charts defaults
	v.SetDefault("charts.width", 10.0)
	v.SetDefault("charts.height", 6.0)
	v.SetDefault("charts.bar_width", 20.0)
	v.SetDefault("charts.heat_palette_size", 12)
	v.SetDefault("charts.wordcloud_width", 1600)
	v.SetDefault("charts.wordcloud_height", 800)
	v.SetDefault("charts.font_file", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "research_helper")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Server.UploadRateLimit <= 0 {
		return fmt.Errorf("upload rate limit must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Paths.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.Paths.TableDir == "" {
		return fmt.Errorf("table output directory is required")
	}
	if c.Paths.ChartDir == "" {
		return fmt.Errorf("chart output directory is required")
	}

	switch c.Pipeline.DedupKey {
	case DedupKeyTitle, DedupKeyDOI:
	default:
		return fmt.Errorf("invalid dedup key: %s", c.Pipeline.DedupKey)
	}
	switch c.Pipeline.ColumnMode {
	case ColumnModePermissive, ColumnModeStrict:
	default:
		return fmt.Errorf("invalid column mode: %s", c.Pipeline.ColumnMode)
	}
	if c.Pipeline.TopNKeywords <= 0 {
		return fmt.Errorf("top_n_keywords must be positive")
	}

	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}
	if c.Charts.WordCloudWidth <= 0 || c.Charts.WordCloudHeight <= 0 {
		return fmt.Errorf("word-cloud dimensions must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
