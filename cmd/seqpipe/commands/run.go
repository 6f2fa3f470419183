package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/seqpipe/pkg/config"
	"github.com/Sumatoshi-tech/seqpipe/pkg/input"
	"github.com/Sumatoshi-tech/seqpipe/pkg/observability"
	"github.com/Sumatoshi-tech/seqpipe/pkg/pipeline"
	"github.com/Sumatoshi-tech/seqpipe/pkg/version"
)

// Handler options filled from the opened input.
const (
	optQualities = "qualities"
	optPaired    = "paired"
)

// runEnv is what a command body gets from execute.
type runEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.PipelineMetrics
	runID   string
	out     io.Writer
	errOut  io.Writer
	quiet   bool
}

// execute loads configuration, initializes observability and runs body
// under a seqpipe.run span.
func execute(cmd *cobra.Command, globals *GlobalFlags, body func(ctx context.Context, env *runEnv) error) (err error) {
	cfg, err := config.LoadConfig(globals.ConfigPath)
	if err != nil {
		return err
	}

	applyGlobals(cmd, globals, cfg)

	tel, err := cfg.Telemetry()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	tel.ServiceVersion = version.Version
	tel.RunID = runID
	tel.LogOutput = cmd.ErrOrStderr()

	providers, err := observability.Init(tel)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	logger := providers.Logger

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return err
	}

	if providers.MetricsHandler != nil {
		srv, serveErr := observability.ServeMetrics(tel.PrometheusAddr, providers.MetricsHandler, logger)
		if serveErr != nil {
			return serveErr
		}

		defer func() {
			err = errors.Join(err, srv.Close(context.Background()))
		}()
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), "seqpipe.run", trace.WithAttributes(
		attribute.String("seqpipe.command", cmd.Name()),
		attribute.String("seqpipe.run_id", runID),
	))
	defer span.End()

	began := time.Now()

	logger.InfoContext(ctx, "run started", "command", cmd.Name(), "version", version.Version)

	err = body(ctx, &runEnv{
		cfg:     cfg,
		logger:  logger,
		tracer:  providers.Tracer,
		metrics: metrics,
		runID:   runID,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		quiet:   globals.Quiet,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "run failed", "command", cmd.Name(), "error", err, "elapsed", time.Since(began))

		return err
	}

	logger.InfoContext(ctx, "run finished", "command", cmd.Name(), "elapsed", time.Since(began))

	return nil
}

// applyGlobals lets persistent flags override the logging section.
func applyGlobals(cmd *cobra.Command, globals *GlobalFlags, cfg *config.Config) {
	if globals.LogLevel != "" {
		cfg.Logging.Level = globals.LogLevel
	}

	if cmd.Flags().Changed("log-json") {
		cfg.Logging.JSON = globals.LogJSON
	}

	switch {
	case globals.Quiet:
		cfg.Logging.Level = "error"
	case globals.Verbose:
		cfg.Logging.Level = "debug"
	}
}

// pipelineRun is the outcome of runPipeline.
type pipelineRun struct {
	input   *input.Result
	summary pipeline.Summary
	report  pipeline.Report
}

// runPipeline opens the input described by opts and drives handler over it.
// The handler sees handlerOpts plus the qualities and paired settings of
// the opened input.
func runPipeline(
	ctx context.Context,
	env *runEnv,
	opts input.Options,
	handler pipeline.Handler,
	handlerOpts pipeline.Options,
) (run pipelineRun, err error) {
	if env.quiet {
		opts.Progress = ""
	}

	res, err := input.Open(ctx, opts,
		input.WithLogger(env.logger),
		input.WithProgressOutput(env.errOut),
	)
	if err != nil {
		return pipelineRun{}, err
	}

	defer func() {
		err = errors.Join(err, res.Close())
	}()

	handlerOpts = maps.Clone(handlerOpts)
	if handlerOpts == nil {
		handlerOpts = pipeline.Options{}
	}

	handlerOpts[optQualities] = res.Qualities
	handlerOpts[optPaired] = res.Paired

	p := pipeline.New(handler, pipeline.StrategyFor(res.Paired),
		pipeline.WithLogger(env.logger),
		pipeline.WithMetrics(env.metrics),
		pipeline.WithTracer(env.tracer),
	)

	env.logger.DebugContext(ctx, "pipeline starting",
		"source", string(res.Source),
		"strategy", p.Strategy().Name(),
	)

	report, err := p.Invoke(ctx, res.Batches, handlerOpts)
	if err != nil {
		return pipelineRun{}, err
	}

	summary := p.Summarize()

	env.logger.InfoContext(ctx, "pipeline finished",
		"source", string(res.Source),
		"records", summary.TotalRecords(),
	)

	return pipelineRun{input: res, summary: summary, report: report}, nil
}
