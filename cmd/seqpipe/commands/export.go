package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/seqpipe/pkg/pipeline"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
)

const (
	optOutput1 = "output1"
	optOutput2 = "output2"
)

// ErrSecondOutputUnpaired is returned when -p is given for single-end input.
var ErrSecondOutputUnpaired = errors.New("second output needs paired input")

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// exportHandler writes every read it is handed. Mates go to the second
// output when one is set, otherwise they are interleaved into the first.
type exportHandler struct {
	stdout io.Writer
	files  []io.Closer
	first  *seqio.Writer
	second *seqio.Writer
}

func (h *exportHandler) OptionSpecs() []pipeline.OptionSpec {
	return []pipeline.OptionSpec{
		{
			Name: optOutput1, Flag: "output", Shorthand: "o", Kind: pipeline.PathOption,
			Default: seqio.Stdio, Description: "output file (- for stdout)",
		},
		{
			Name: optOutput2, Flag: "paired-output", Shorthand: "p", Kind: pipeline.PathOption,
			Default: "", Description: "second output file for mate 2",
		},
	}
}

func (h *exportHandler) Start(_ context.Context, opts pipeline.Options) error {
	qualities := opts.Bool(optQualities)

	first, err := h.open(opts.String(optOutput1), qualities)
	if err != nil {
		return err
	}

	h.first = first

	path2 := opts.String(optOutput2)
	if path2 == "" {
		return nil
	}

	if !opts.Bool(optPaired) {
		return errors.Join(ErrSecondOutputUnpaired, h.Close())
	}

	second, err := h.open(path2, qualities)
	if err != nil {
		return errors.Join(err, h.Close())
	}

	h.second = second

	return nil
}

func (h *exportHandler) open(path string, qualities bool) (*seqio.Writer, error) {
	var sink io.WriteCloser

	if path == seqio.Stdio {
		sink = nopCloser{h.stdout}
	} else {
		created, err := seqio.Create(path)
		if err != nil {
			return nil, err
		}

		sink = created
	}

	h.files = append(h.files, sink)

	return seqio.NewWriter(sink, seqio.OutputFormat(seqio.StripCompressionSuffix(path), qualities)), nil
}

func (h *exportHandler) HandleReads(_ context.Context, _ *pipeline.BatchContext, read1, read2 *seq.Read) error {
	err := h.first.Write(read1)
	if err != nil || read2 == nil {
		return err
	}

	if h.second != nil {
		return h.second.Write(read2)
	}

	return h.first.Write(read2)
}

func (h *exportHandler) Finish(context.Context) (pipeline.Report, error) {
	written := h.first.Count()

	err := h.first.Flush()
	if err != nil {
		return nil, err
	}

	if h.second != nil {
		written += h.second.Count()

		err = h.second.Flush()
		if err != nil {
			return nil, err
		}
	}

	return pipeline.Report{"written": written, "format": string(h.first.Format())}, nil
}

func (h *exportHandler) Close() error {
	var errs []error
	for _, f := range h.files {
		errs = append(errs, f.Close())
	}

	h.files = nil

	return errors.Join(errs...)
}

// NewExportCommand creates the export command.
func NewExportCommand(globals *GlobalFlags) *cobra.Command {
	var (
		in          inputFlags
		handlerOpts pipeline.Options
	)

	specs := (&exportHandler{}).OptionSpecs()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write reads as FASTQ or FASTA",
		Long: `Stream the input through a writing pipeline. The output format follows the
output file extension, or FASTQ when qualities are available and FASTA when
not. Compression is chosen by suffix (.gz, .zst, .lz4). Combined with
--subsample and --max-reads this subsamples a read set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, globals, func(ctx context.Context, env *runEnv) error {
				opts, err := in.options(cmd, env.cfg)
				if err != nil {
					return err
				}

				run, err := runPipeline(ctx, env, opts, &exportHandler{stdout: env.out}, handlerOpts)
				if err != nil {
					return err
				}

				written, _ := run.report["written"].(int64)
				env.logger.InfoContext(ctx, "reads exported",
					"written", written,
					"format", run.report["format"],
					"records", run.summary.TotalRecords(),
				)

				output := handlerOpts.WithDefaults(specs).String(optOutput1)
				if output != seqio.Stdio && !env.quiet {
					_, err = fmt.Fprintf(env.errOut, "wrote %s reads\n", humanize.Comma(written))
				}

				return err
			})
		},
	}

	in.register(cmd)
	handlerOpts = registerOptions(cmd.Flags(), specs)

	return cmd
}
