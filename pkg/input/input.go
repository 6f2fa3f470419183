// Package input turns command-line input settings into the batch stream a
// pipeline consumes: raw reader, optional subsampler, batch iterator tagged
// with its source, and an optional progress observer, in that order.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/Sumatoshi-tech/seqpipe/pkg/progress"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

var (
	// ErrMissingInput is returned when no first input is given.
	ErrMissingInput = errors.New("no input file")
	// ErrConflictingInputs is returned for input combinations that cannot
	// be read together.
	ErrConflictingInputs = errors.New("conflicting input options")
	// ErrMissingMate is returned for paired two-file input without a second file.
	ErrMissingMate = errors.New("paired input needs a second file")
)

// seedStream is the second PCG word for seeded runs.
const seedStream = 0x9e3779b97f4a7c15

// Options are the reader settings shared by every command.
type Options struct {
	// Input1 is the first (or interleaved) input path; "-" reads stdin.
	Input1 string
	// Input2 is the mate file for paired input, otherwise a FASTA quality file.
	Input2 string
	// Interleaved reads mates stored alternately in Input1.
	Interleaved bool
	// Paired processes records as mate pairs.
	Paired bool
	// SingleInputRead keeps only mate 1 or 2 of paired input; zero disables it.
	SingleInputRead int
	Format          seqio.Format
	Colorspace      bool
	// Subsample is the fraction of records to keep; zero disables sampling.
	Subsample float64
	// Seed makes subsampling reproducible; zero picks a random seed.
	Seed uint64
	// BatchSize defaults to seq.DefaultBatchSize when zero.
	BatchSize int
	// MaxReads caps the number of records delivered; zero means no cap.
	MaxReads int
	// Progress names a progress style ("bar", "msg"); empty disables it.
	Progress   string
	Magnitude  string
	BufferSize int
}

// Result is an opened input.
type Result struct {
	// Batches is the stream handed to the pipeline.
	Batches stream.Iterator[seq.Batch]
	// Source identifies the input in statistics.
	Source seq.SourceID
	// Input1 and Input2 are the resolved record inputs; Input2 is empty
	// unless mates come from a second file.
	Input1, Input2 string
	// Qualities reports whether reads carry quality strings.
	Qualities bool
	// UsedQualFile reports whether qualities were read from a separate file.
	UsedQualFile bool
	// Paired reports whether records are mate pairs.
	Paired bool

	reader   seqio.Reader
	progress *progress.Observer
}

// Close stops progress reporting and releases the underlying files.
func (r *Result) Close() error {
	if r.progress != nil {
		r.progress.Stop()
	}

	return r.reader.Close()
}

type openConfig struct {
	rng         stream.RandomSource
	reporter    progress.Reporter
	progressOut io.Writer
	logger      *slog.Logger
}

// OpenOption customizes Open.
type OpenOption func(*openConfig)

// WithRand sets the subsampler's random source.
func WithRand(rng stream.RandomSource) OpenOption {
	return func(c *openConfig) { c.rng = rng }
}

// WithReporter replaces the progress reporter built from Options.Progress.
func WithReporter(r progress.Reporter) OpenOption {
	return func(c *openConfig) { c.reporter = r }
}

// WithProgressOutput sets where progress is drawn. Defaults to stderr.
func WithProgressOutput(w io.Writer) OpenOption {
	return func(c *openConfig) { c.progressOut = w }
}

// WithLogger sets the logger for input resolution messages.
func WithLogger(logger *slog.Logger) OpenOption {
	return func(c *openConfig) { c.logger = logger }
}

type resolved struct {
	input1, input2, qualFile string
}

// resolve applies the input combination rules: interleaved input is read from
// Input1 alone; paired two-file input takes its mates from Input2; otherwise
// Input2, when set, is a quality file for FASTA Input1.
func resolve(opts Options) (resolved, error) {
	if opts.Input1 == "" {
		return resolved{}, ErrMissingInput
	}

	res := resolved{input1: opts.Input1}

	switch {
	case opts.Interleaved:
		if opts.Input2 != "" {
			return resolved{}, fmt.Errorf("%w: interleaved input takes a single file", ErrConflictingInputs)
		}

		if formatOf(opts.Format, opts.Input1) == seqio.FormatSAM {
			return resolved{}, fmt.Errorf("%w: SAM mates are paired by flags, not interleaving", ErrConflictingInputs)
		}
	case opts.Paired:
		res.input2 = opts.Input2
		if res.input2 == "" && formatOf(opts.Format, opts.Input1) != seqio.FormatSAM {
			return resolved{}, ErrMissingMate
		}
	default:
		res.qualFile = opts.Input2
	}

	if res.qualFile != "" {
		if f := formatOf(opts.Format, opts.Input1); f != seqio.FormatAuto && f != seqio.FormatFASTA {
			return resolved{}, fmt.Errorf("%w: quality file given for %s input", ErrConflictingInputs, f)
		}
	}

	if opts.SingleInputRead != 0 && opts.Paired {
		return resolved{}, fmt.Errorf("%w: single input read with paired processing", ErrConflictingInputs)
	}

	return res, nil
}

func formatOf(hint seqio.Format, path string) seqio.Format {
	if hint != seqio.FormatAuto {
		return hint
	}

	return seqio.FormatFromPath(path)
}

// Open builds the batch stream described by opts. The caller must Close the
// result once the stream is no longer read.
func Open(ctx context.Context, opts Options, openOpts ...OpenOption) (*Result, error) {
	cfg := openConfig{logger: slog.New(slog.DiscardHandler)}
	for _, o := range openOpts {
		o(&cfg)
	}

	res, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	reader, err := openRaw(res, opts)
	if err != nil {
		return nil, err
	}

	result, err := assemble(reader, res, opts, cfg)
	if err != nil {
		return nil, errors.Join(err, reader.Close())
	}

	cfg.logger.DebugContext(ctx, "input opened",
		"source", string(result.Source),
		"paired", result.Paired,
		"qualities", result.Qualities,
		"qual_file", result.UsedQualFile,
		"batch_size", batchSize(opts.BatchSize),
		"max_reads", opts.MaxReads,
		"subsample", opts.Subsample,
	)

	return result, nil
}

func openRaw(res resolved, opts Options) (seqio.Reader, error) {
	rawOpts := seqio.Options{
		Format:     opts.Format,
		Colorspace: opts.Colorspace,
		QualFile:   res.qualFile,
		BufferSize: opts.BufferSize,
	}

	r1, err := seqio.OpenReader(res.input1, rawOpts)
	if err != nil {
		return nil, err
	}

	var reader seqio.Reader = r1

	switch {
	case res.input2 != "":
		r2, err := seqio.OpenReader(res.input2, rawOpts)
		if err != nil {
			return nil, errors.Join(err, r1.Close())
		}

		reader = seqio.NewPairedReader(r1, r2)
	case opts.Interleaved:
		reader = seqio.NewInterleavedReader(r1)
	case !opts.Paired && opts.SingleInputRead == 0:
		// SAM yields flagged mates as pairs; single-end runs see each read.
		reader = seqio.SplitPairs(r1)
	}

	if opts.SingleInputRead != 0 {
		selected, err := seqio.SelectRead(reader, opts.SingleInputRead)
		if err != nil {
			return nil, errors.Join(err, reader.Close())
		}

		reader = selected
	}

	return reader, nil
}

func assemble(reader seqio.Reader, res resolved, opts Options, cfg openConfig) (*Result, error) {
	var records stream.Iterator[seq.Record] = reader

	if opts.Subsample != 0 {
		rng := cfg.rng
		if rng == nil {
			rng = newRand(opts.Seed)
		}

		sampled, err := stream.Subsample(records, opts.Subsample, rng)
		if err != nil {
			return nil, err
		}

		records = sampled
	}

	provenance := seq.Provenance{Input1: res.input1, Input2: res.input2}

	batches, err := seq.NewBatchIterator(records, provenance, batchSize(opts.BatchSize), opts.MaxReads)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Batches:      batches,
		Source:       batches.Source(),
		Input1:       res.input1,
		Input2:       res.input2,
		Qualities:    reader.DeliversQualities(),
		UsedQualFile: res.qualFile != "",
		Paired:       opts.SingleInputRead == 0 && (opts.Paired || opts.Interleaved),
		reader:       reader,
	}

	if opts.Progress == "" {
		return result, nil
	}

	reporter := cfg.reporter
	if reporter == nil {
		mag, err := progress.ParseMagnitude(opts.Magnitude)
		if err != nil {
			return nil, err
		}

		reporter, err = progress.New(progress.Config{
			Style:     opts.Progress,
			Out:       cfg.progressOut,
			BatchSize: batchSize(opts.BatchSize),
			MaxReads:  opts.MaxReads,
			Magnitude: mag,
		})
		if err != nil {
			return nil, err
		}
	}

	result.progress = progress.Wrap(batches, reporter)
	result.Batches = result.progress

	return result, nil
}

func batchSize(n int) int {
	if n == 0 {
		return seq.DefaultBatchSize
	}

	return n
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return rand.New(rand.NewPCG(seed, seedStream))
}
