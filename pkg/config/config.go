// Package config loads seqpipe settings from a YAML file and SEQPIPE_*
// environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/seqpipe/pkg/observability"
	"github.com/Sumatoshi-tech/seqpipe/pkg/progress"
	"github.com/Sumatoshi-tech/seqpipe/pkg/report"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
)

// Sentinel validation errors.
var (
	ErrInvalidBatchSize   = errors.New("batch size must be positive")
	ErrInvalidBufferSize  = errors.New("invalid buffer size")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
)

// Config is the full seqpipe configuration.
type Config struct {
	Input         InputConfig         `mapstructure:"input"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Output        OutputConfig        `mapstructure:"output"`
}

// InputConfig holds reader defaults. Command-line flags take precedence.
type InputConfig struct {
	Format     string `mapstructure:"format"`
	BatchSize  int    `mapstructure:"batch_size"`
	BufferSize string `mapstructure:"buffer_size"`
	Magnitude  string `mapstructure:"magnitude"`
	Progress   string `mapstructure:"progress"`
	Seed       uint64 `mapstructure:"seed"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ObservabilityConfig maps onto observability.Config.
type ObservabilityConfig struct {
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"`
	OTLPHeaders    string  `mapstructure:"otlp_headers"`
	PrometheusAddr string  `mapstructure:"prometheus_addr"`
	Environment    string  `mapstructure:"environment"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
	DebugTrace     bool    `mapstructure:"debug_trace"`
	TracePaths     bool    `mapstructure:"trace_paths"`
}

// OutputConfig selects the summary rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// BufferBytes parses Input.BufferSize ("1MiB", "512k", "65536").
func (c *Config) BufferBytes() (int, error) {
	n, err := humanize.ParseBytes(c.Input.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBufferSize, err)
	}

	if n == 0 || n > maxBufferSize {
		return 0, fmt.Errorf("%w: %s", ErrInvalidBufferSize, c.Input.BufferSize)
	}

	return int(n), nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if c.Input.BatchSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, c.Input.BatchSize)
	}

	_, err := c.BufferBytes()
	if err != nil {
		return err
	}

	_, err = seqio.ParseFormat(c.Input.Format)
	if err != nil {
		return fmt.Errorf("input.format: %w", err)
	}

	_, err = progress.ParseMagnitude(c.Input.Magnitude)
	if err != nil {
		return fmt.Errorf("input.magnitude: %w", err)
	}

	_, err = observability.ParseLevel(c.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	_, err = report.ParseFormat(c.Output.Format)
	if err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	return nil
}

// Telemetry builds the observability settings for one run.
func (c *Config) Telemetry() (observability.Config, error) {
	level, err := observability.ParseLevel(c.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	cfg := observability.DefaultConfig()
	cfg.Environment = c.Observability.Environment
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.PrometheusAddr = c.Observability.PrometheusAddr
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.DebugTrace = c.Observability.DebugTrace
	cfg.TracePaths = c.Observability.TracePaths
	cfg.LogLevel = level
	cfg.LogJSON = c.Logging.JSON

	return cfg, nil
}
