// Package pipeline implements the batch-oriented record processing engine.
//
// A Pipeline pulls batches from a stream, keeps per-source record and
// base-pair counts, and routes each record (or mate pair) through a Strategy
// to a Handler. Processing is single-threaded: exactly one batch is live at a
// time, so the BatchContext's pointer into the statistics needs no locking.
//
// Record counts are incremented by a batch's declared size before any of its
// records are handled. A batch that fails part way through therefore still
// counts in full, while its base-pair totals reflect only the records handled
// before the failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/seqpipe/pkg/observability"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

// Pipeline drives a Handler over a stream of batches.
type Pipeline struct {
	handler  Handler
	strategy Strategy
	stats    Stats

	logger  *slog.Logger
	metrics *observability.PipelineMetrics
	tracer  trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for run-level messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics records per-batch instruments.
func WithMetrics(metrics *observability.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

// WithTracer sets the tracer for the run span.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = tracer }
}

// New creates a Pipeline. A nil handler behaves like Unimplemented and a nil
// strategy defaults to SingleEnd.
func New(handler Handler, strategy Strategy, opts ...Option) *Pipeline {
	if handler == nil {
		handler = Unimplemented{}
	}

	if strategy == nil {
		strategy = SingleEnd
	}

	p := &Pipeline{
		handler:  handler,
		strategy: strategy,
		stats:    newStats(),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   nooptrace.NewTracerProvider().Tracer("seqpipe"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Strategy returns the record-handling strategy.
func (p *Pipeline) Strategy() Strategy {
	return p.strategy
}

// Invoke runs the pipeline: Start, then ProcessBatch for every batch in order
// until the stream ends, then Finish, whose report is returned.
// A handler implementing io.Closer is closed once Start has succeeded, whether
// the run succeeds or fails. Cancelling ctx stops pulling further batches.
func (p *Pipeline) Invoke(ctx context.Context, batches stream.Iterator[seq.Batch], opts Options) (report Report, err error) {
	ctx, span := p.tracer.Start(ctx, "seqpipe.pipeline.invoke",
		trace.WithAttributes(attribute.String("seqpipe.strategy", p.strategy.Name())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	if configurable, ok := p.handler.(Configurable); ok {
		opts = opts.WithDefaults(configurable.OptionSpecs())
	}

	startErr := p.start(ctx, opts)
	if startErr != nil {
		return nil, fmt.Errorf("start: %w", startErr)
	}

	if closer, ok := p.handler.(io.Closer); ok {
		defer func() {
			closeErr := closer.Close()
			if closeErr != nil {
				err = errors.Join(err, fmt.Errorf("close: %w", closeErr))
			}
		}()
	}

	batchCount := 0

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("invoke: %w", ctxErr)
		}

		batch, nextErr := batches.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return nil, fmt.Errorf("read batch %d: %w", batchCount, nextErr)
		}

		procErr := p.ProcessBatch(ctx, batch)
		if procErr != nil {
			return nil, procErr
		}

		batchCount++
	}

	span.SetAttributes(attribute.Int("seqpipe.batches", batchCount))
	p.logger.DebugContext(ctx, "batch stream exhausted", "batches", batchCount)

	return p.finish(ctx)
}

func (p *Pipeline) start(ctx context.Context, opts Options) error {
	starter, ok := p.handler.(Starter)
	if !ok {
		return nil
	}

	return starter.Start(ctx, opts)
}

func (p *Pipeline) finish(ctx context.Context) (Report, error) {
	finisher, ok := p.handler.(Finisher)
	if !ok {
		return nil, nil
	}

	report, err := finisher.Finish(ctx)
	if err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}

	return report, nil
}

// ProcessBatch accounts one batch and hands its records to the strategy.
// A batch with an empty source or a declared size that differs from its
// record count is rejected before any accounting.
func (p *Pipeline) ProcessBatch(ctx context.Context, batch seq.Batch) error {
	if batch.Source == "" {
		return fmt.Errorf("%w: missing source", ErrMalformedBatch)
	}

	if batch.Size != len(batch.Records) {
		return fmt.Errorf("%w: source %s declares %d records but holds %d",
			ErrMalformedBatch, batch.Source, batch.Size, len(batch.Records))
	}

	bp, seen := p.stats.BPCounts[batch.Source]
	if !seen {
		bp = &BasePairs{}
		p.stats.BPCounts[batch.Source] = bp
		p.stats.RecordCounts[batch.Source] = 0
	}

	p.stats.RecordCounts[batch.Source] += int64(batch.Size)

	bc := &BatchContext{
		Source: batch.Source,
		Size:   batch.Size,
		BP:     bp,
	}

	before := *bp
	began := time.Now()

	err := HandleRecords(ctx, p.strategy, bc, batch.Records, p.handler)

	if p.metrics != nil {
		p.metrics.RecordBatch(ctx, string(batch.Source), batch.Size,
			bp[0]-before[0], bp[1]-before[1], time.Since(began), err != nil)
	}

	return err
}

// Summarize returns a snapshot of the statistics as of the call.
func (p *Pipeline) Summarize() Summary {
	return p.stats.snapshot()
}
