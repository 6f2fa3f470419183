package config

import (
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// Default configuration values.
const (
	DefaultBatchSize   = seq.DefaultBatchSize
	DefaultBufferSize  = "1MiB"
	DefaultMagnitude   = "M"
	DefaultLogLevel    = "info"
	DefaultOutput      = "text"
	DefaultSampleRatio = 1.0

	maxBufferSize = 1 << 30
)

func applyDefaults(v *viper.Viper) {
	v.SetDefault("input.format", "")
	v.SetDefault("input.batch_size", DefaultBatchSize)
	v.SetDefault("input.buffer_size", DefaultBufferSize)
	v.SetDefault("input.magnitude", DefaultMagnitude)
	v.SetDefault("input.progress", "")
	v.SetDefault("input.seed", 0)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.json", false)

	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.otlp_insecure", false)
	v.SetDefault("observability.otlp_headers", "")
	v.SetDefault("observability.prometheus_addr", "")
	v.SetDefault("observability.environment", "")
	v.SetDefault("observability.sample_ratio", DefaultSampleRatio)
	v.SetDefault("observability.debug_trace", false)
	v.SetDefault("observability.trace_paths", false)

	v.SetDefault("output.format", DefaultOutput)
}
