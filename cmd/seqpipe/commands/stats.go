package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/seqpipe/pkg/pipeline"
	"github.com/Sumatoshi-tech/seqpipe/pkg/report"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// statsHandler tracks read lengths across a run.
type statsHandler struct {
	reads     int64
	withQuals int64
	minLen    int
	maxLen    int
}

func (h *statsHandler) HandleReads(_ context.Context, _ *pipeline.BatchContext, read1, read2 *seq.Read) error {
	h.observe(read1)

	if read2 != nil {
		h.observe(read2)
	}

	return nil
}

func (h *statsHandler) observe(read *seq.Read) {
	n := read.Len()
	if h.reads == 0 || n < h.minLen {
		h.minLen = n
	}

	if n > h.maxLen {
		h.maxLen = n
	}

	if read.HasQualities() {
		h.withQuals++
	}

	h.reads++
}

func (h *statsHandler) Finish(context.Context) (pipeline.Report, error) {
	rep := pipeline.Report{"reads": h.reads, "reads_with_qualities": h.withQuals}
	if h.reads > 0 {
		rep["min_length"] = h.minLen
		rep["max_length"] = h.maxLen
	}

	return rep, nil
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(globals *GlobalFlags) *cobra.Command {
	var (
		in           inputFlags
		outputFormat string
		summaryFile  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count records and bases per input",
		Long: `Stream the input through a counting pipeline and print the per-source
record and base-pair totals together with read length bounds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, globals, func(ctx context.Context, env *runEnv) error {
				if !cmd.Flags().Changed("output-format") {
					outputFormat = env.cfg.Output.Format
				}

				format, err := report.ParseFormat(outputFormat)
				if err != nil {
					return err
				}

				opts, err := in.options(cmd, env.cfg)
				if err != nil {
					return err
				}

				run, err := runPipeline(ctx, env, opts, &statsHandler{}, nil)
				if err != nil {
					return err
				}

				run.report["paired"] = run.input.Paired
				run.report["qual_file"] = run.input.UsedQualFile

				doc := report.Document{
					Command: cmd.Name(),
					RunID:   env.runID,
					Summary: run.summary,
					Details: run.report,
				}

				if summaryFile != "" {
					err = report.Save(summaryFile, doc)
					if err != nil {
						return err
					}

					env.logger.InfoContext(ctx, "summary saved", "path", summaryFile)
				}

				return report.Render(env.out, doc, format)
			})
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&outputFormat, "output-format", "text", "summary format: text, json, yaml")
	cmd.Flags().StringVar(&summaryFile, "summary-file", "", "also save the summary (.json, .yaml)")

	return cmd
}
