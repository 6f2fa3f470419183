package pipeline

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// Strategy normalizes one batch element into a Handler call and updates the
// batch's base-pair counters.
type Strategy interface {
	HandleRecord(ctx context.Context, batch *BatchContext, record seq.Record, handler Handler) error
	Name() string
}

// Strategies selectable at pipeline construction.
var (
	SingleEnd Strategy = singleEnd{}
	PairedEnd Strategy = pairedEnd{}
)

// StrategyFor returns PairedEnd when paired is set, SingleEnd otherwise.
func StrategyFor(paired bool) Strategy {
	if paired {
		return PairedEnd
	}

	return SingleEnd
}

type singleEnd struct{}

func (singleEnd) Name() string { return "single-end" }

func (singleEnd) HandleRecord(ctx context.Context, batch *BatchContext, record seq.Record, handler Handler) error {
	if record.Read1 == nil {
		return fmt.Errorf("%w: single-end record without a read", ErrMalformedBatch)
	}

	if record.Read2 != nil {
		return fmt.Errorf("%w: mate pair handed to single-end strategy", ErrMalformedBatch)
	}

	batch.BP[0] += int64(record.Read1.Len())

	return handler.HandleReads(ctx, batch, record.Read1, nil)
}

type pairedEnd struct{}

func (pairedEnd) Name() string { return "paired-end" }

func (pairedEnd) HandleRecord(ctx context.Context, batch *BatchContext, record seq.Record, handler Handler) error {
	if record.Read1 == nil || record.Read2 == nil {
		return fmt.Errorf("%w: paired-end record missing a mate", ErrMalformedBatch)
	}

	batch.BP[0] += int64(record.Read1.Len())
	batch.BP[1] += int64(record.Read2.Len())

	return handler.HandleReads(ctx, batch, record.Read1, record.Read2)
}

// HandleRecords passes records to strategy one at a time, in order, stopping
// at the first error. The error names the failing record's position.
func HandleRecords(
	ctx context.Context, strategy Strategy, batch *BatchContext, records []seq.Record, handler Handler,
) error {
	for i, record := range records {
		err := strategy.HandleRecord(ctx, batch, record, handler)
		if err != nil {
			return fmt.Errorf("source %s record %d: %w", batch.Source, i, err)
		}
	}

	return nil
}
