package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/seqpipe/pkg/config"
	"github.com/Sumatoshi-tech/seqpipe/pkg/observability"
	"github.com/Sumatoshi-tech/seqpipe/pkg/progress"
	"github.com/Sumatoshi-tech/seqpipe/pkg/report"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seqpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func validConfig() config.Config {
	return config.Config{
		Input:         config.InputConfig{BatchSize: 10, BufferSize: "64KiB", Magnitude: "K"},
		Logging:       config.LoggingConfig{Level: "debug"},
		Observability: config.ObservabilityConfig{SampleRatio: 0.5},
		Output:        config.OutputConfig{Format: "json"},
	}
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBatchSize, cfg.Input.BatchSize)
	assert.Equal(t, config.DefaultBufferSize, cfg.Input.BufferSize)
	assert.Equal(t, config.DefaultMagnitude, cfg.Input.Magnitude)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultOutput, cfg.Output.Format)
	assert.InDelta(t, config.DefaultSampleRatio, cfg.Observability.SampleRatio, 0.0001)
	assert.Empty(t, cfg.Input.Format)
	assert.Zero(t, cfg.Input.Seed)

	n, err := cfg.BufferBytes()
	require.NoError(t, err)
	assert.Equal(t, 1<<20, n)
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `input:
  format: fasta
  batch_size: 250
  buffer_size: 4MiB
  seed: 42
  progress: msg
logging:
  level: warn
  json: true
observability:
  prometheus_addr: "127.0.0.1:0"
  otlp_headers: "a=1,b=2"
  trace_paths: true
output:
  format: yaml
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "fasta", cfg.Input.Format)
	assert.Equal(t, 250, cfg.Input.BatchSize)
	assert.Equal(t, uint64(42), cfg.Input.Seed)
	assert.Equal(t, "msg", cfg.Input.Progress)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "yaml", cfg.Output.Format)

	n, err := cfg.BufferBytes()
	require.NoError(t, err)
	assert.Equal(t, 4<<20, n)

	tel, err := cfg.Telemetry()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", tel.PrometheusAddr)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, tel.OTLPHeaders)
	assert.True(t, tel.TracePaths)
	assert.True(t, tel.LogJSON)
	assert.Equal(t, observability.ModeCLI, tel.Mode)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("SEQPIPE_INPUT_BATCH_SIZE", "77")
	t.Setenv("SEQPIPE_LOGGING_LEVEL", "error")

	cfg, err := config.LoadConfig(writeConfig(t, "input:\n  batch_size: 5\n"))
	require.NoError(t, err)

	assert.Equal(t, 77, cfg.Input.BatchSize)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadConfig_SearchPathMissingIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBatchSize, cfg.Input.BatchSize)
}

func TestLoadConfig_SearchPathFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".seqpipe.yaml"), []byte("output:\n  format: json\n"), 0o600))

	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = config.LoadConfig(writeConfig(t, "input: [unclosed"))
	require.Error(t, err)

	_, err = config.LoadConfig(writeConfig(t, "input:\n  batch_size: 0\n"))
	require.ErrorIs(t, err, config.ErrInvalidBatchSize)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "batch_size", mutate: func(c *config.Config) { c.Input.BatchSize = -1 }, wantErr: config.ErrInvalidBatchSize},
		{name: "buffer_size_garbage", mutate: func(c *config.Config) { c.Input.BufferSize = "lots" }, wantErr: config.ErrInvalidBufferSize},
		{name: "buffer_size_zero", mutate: func(c *config.Config) { c.Input.BufferSize = "0" }, wantErr: config.ErrInvalidBufferSize},
		{name: "buffer_size_huge", mutate: func(c *config.Config) { c.Input.BufferSize = "2GiB" }, wantErr: config.ErrInvalidBufferSize},
		{name: "format", mutate: func(c *config.Config) { c.Input.Format = "bam" }, wantErr: seqio.ErrUnknownFileType},
		{name: "magnitude", mutate: func(c *config.Config) { c.Input.Magnitude = "T" }, wantErr: progress.ErrInvalidMagnitude},
		{name: "log_level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, wantErr: observability.ErrInvalidLogLevel},
		{name: "sample_ratio", mutate: func(c *config.Config) { c.Observability.SampleRatio = 1.5 }, wantErr: config.ErrInvalidSampleRatio},
		{name: "output", mutate: func(c *config.Config) { c.Output.Format = "xml" }, wantErr: report.ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTelemetry_InvalidLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Logging.Level = "chatty"

	_, err := cfg.Telemetry()
	require.ErrorIs(t, err, observability.ErrInvalidLogLevel)
}
