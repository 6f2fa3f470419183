package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/seqpipe/pkg/config"
	"github.com/Sumatoshi-tech/seqpipe/pkg/input"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
)

// inputFlags are the reader flags shared by pipeline commands.
type inputFlags struct {
	input1          string
	input2          string
	interleaved     bool
	paired          bool
	singleInputRead int
	format          string
	colorspace      bool
	subsample       float64
	seed            uint64
	batchSize       int
	maxReads        int
	progress        string
	magnitude       string
	bufferSize      string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input1, "input1", "1", "", "first or interleaved input file (- for stdin)")
	fs.StringVarP(&f.input2, "input2", "2", "", "mate file for paired input, otherwise a FASTA quality file")
	fs.BoolVar(&f.interleaved, "interleaved-input", false, "mates are stored alternately in input1")
	fs.BoolVar(&f.paired, "paired", false, "process records as mate pairs")
	fs.IntVar(&f.singleInputRead, "single-input-read", 0, "keep only mate 1 or 2 of paired input")
	fs.StringVar(&f.format, "format", "", "input format: auto, fastq, fasta, sam")
	fs.BoolVar(&f.colorspace, "colorspace", false, "reads are in SOLiD colorspace")
	fs.Float64Var(&f.subsample, "subsample", 0, "fraction of records to keep (0 = all)")
	fs.Uint64Var(&f.seed, "seed", 0, "subsampling seed (0 = random)")
	fs.IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "records per batch")
	fs.IntVar(&f.maxReads, "max-reads", 0, "stop after this many records (0 = no limit)")
	fs.StringVar(&f.progress, "progress", "", "progress style: bar, msg (empty = none)")
	fs.StringVar(&f.magnitude, "progress-magnitude", config.DefaultMagnitude, "progress counter magnitude: K, M, G")
	fs.StringVar(&f.bufferSize, "buffer-size", config.DefaultBufferSize, "reader buffer size (e.g. 64KiB, 4MiB)")

	_ = cmd.MarkFlagRequired("input1")
}

// options merges the flags over cfg. A flag wins only when set explicitly.
func (f *inputFlags) options(cmd *cobra.Command, cfg *config.Config) (input.Options, error) {
	changed := cmd.Flags().Changed

	if !changed("format") {
		f.format = cfg.Input.Format
	}

	if !changed("seed") {
		f.seed = cfg.Input.Seed
	}

	if !changed("batch-size") {
		f.batchSize = cfg.Input.BatchSize
	}

	if !changed("progress") {
		f.progress = cfg.Input.Progress
	}

	if !changed("progress-magnitude") {
		f.magnitude = cfg.Input.Magnitude
	}

	if changed("buffer-size") {
		cfg.Input.BufferSize = f.bufferSize
	}

	bufferSize, err := cfg.BufferBytes()
	if err != nil {
		return input.Options{}, err
	}

	format, err := seqio.ParseFormat(f.format)
	if err != nil {
		return input.Options{}, err
	}

	return input.Options{
		Input1:          f.input1,
		Input2:          f.input2,
		Interleaved:     f.interleaved,
		Paired:          f.paired,
		SingleInputRead: f.singleInputRead,
		Format:          format,
		Colorspace:      f.colorspace,
		Subsample:       f.subsample,
		Seed:            f.seed,
		BatchSize:       f.batchSize,
		MaxReads:        f.maxReads,
		Progress:        f.progress,
		Magnitude:       f.magnitude,
		BufferSize:      bufferSize,
	}, nil
}
