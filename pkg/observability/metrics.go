package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRecordsTotal  = "seqpipe.records.total"
	metricBasesTotal    = "seqpipe.bases.total"
	metricBatchesTotal  = "seqpipe.batches.total"
	metricBatchDuration = "seqpipe.batch.duration.seconds"

	attrSource = "source"
	attrRead   = "read"
	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// batchBucketBoundaries covers 100us to 30s; batches of 1000 short reads
// usually land in the low millisecond range.
var batchBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// PipelineMetrics holds the OTel instruments recorded by the pipeline engine.
type PipelineMetrics struct {
	records  metric.Int64Counter
	bases    metric.Int64Counter
	batches  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewPipelineMetrics creates pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	records, err := mt.Int64Counter(metricRecordsTotal,
		metric.WithDescription("Records accounted by the pipeline"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecordsTotal, err)
	}

	bases, err := mt.Int64Counter(metricBasesTotal,
		metric.WithDescription("Base pairs handled, by mate"),
		metric.WithUnit("{bp}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBasesTotal, err)
	}

	batches, err := mt.Int64Counter(metricBatchesTotal,
		metric.WithDescription("Batches processed"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBatchesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricBatchDuration,
		metric.WithDescription("Time spent handling one batch"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(batchBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBatchDuration, err)
	}

	return &PipelineMetrics{
		records:  records,
		bases:    bases,
		batches:  batches,
		duration: duration,
	}, nil
}

// RecordBatch records one processed batch: its declared size, the base pairs
// added to each mate counter and how long handling took.
func (pm *PipelineMetrics) RecordBatch(
	ctx context.Context, source string, size int, bp1, bp2 int64, elapsed time.Duration, failed bool,
) {
	status := statusOK
	if failed {
		status = statusError
	}

	srcAttr := attribute.String(attrSource, source)

	pm.records.Add(ctx, int64(size), metric.WithAttributes(srcAttr))
	pm.bases.Add(ctx, bp1, metric.WithAttributes(srcAttr, attribute.String(attrRead, "1")))

	if bp2 > 0 {
		pm.bases.Add(ctx, bp2, metric.WithAttributes(srcAttr, attribute.String(attrRead, "2")))
	}

	statusAttrs := metric.WithAttributes(srcAttr, attribute.String(attrStatus, status))
	pm.batches.Add(ctx, 1, statusAttrs)
	pm.duration.Record(ctx, elapsed.Seconds(), statusAttrs)
}
