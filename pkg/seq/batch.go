package seq

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

// DefaultBatchSize is used when no batch size is configured.
const DefaultBatchSize = 1000

// ErrInvalidBatchSize is returned for a non-positive batch size.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// BatchIterator groups consecutive upstream records into batches of a fixed
// size. The final batch holds whatever remains. When maxRecords is positive
// no more than maxRecords records are yielded in total.
type BatchIterator struct {
	upstream   stream.Iterator[Record]
	provenance Provenance
	size       int
	maxRecords int
	yielded    int
	done       bool
}

// NewBatchIterator wraps upstream. A maxRecords of zero or less means no cap.
func NewBatchIterator(upstream stream.Iterator[Record], provenance Provenance, size, maxRecords int) (*BatchIterator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
	}

	return &BatchIterator{
		upstream:   upstream,
		provenance: provenance,
		size:       size,
		maxRecords: maxRecords,
	}, nil
}

// Source returns the identifier every yielded batch is tagged with.
func (b *BatchIterator) Source() SourceID {
	return b.provenance.SourceID()
}

// Provenance returns the input path(s) attached to the stream.
func (b *BatchIterator) Provenance() Provenance {
	return b.provenance
}

// BatchSize returns the configured batch size.
func (b *BatchIterator) BatchSize() int {
	return b.size
}

// MaxRecords returns the record cap, or zero when uncapped.
func (b *BatchIterator) MaxRecords() int {
	return max(b.maxRecords, 0)
}

// Next returns the next batch, or io.EOF once the upstream is exhausted or
// the record cap is reached. An upstream error is returned as is; records
// read before the error are discarded with the partial batch.
func (b *BatchIterator) Next() (Batch, error) {
	if b.done {
		return Batch{}, io.EOF
	}

	want := b.size
	if b.maxRecords > 0 {
		want = min(want, b.maxRecords-b.yielded)
	}

	if want <= 0 {
		b.done = true

		return Batch{}, io.EOF
	}

	records := make([]Record, 0, want)

	for len(records) < want {
		rec, err := b.upstream.Next()
		if errors.Is(err, io.EOF) {
			b.done = true

			break
		}

		if err != nil {
			return Batch{}, err
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return Batch{}, io.EOF
	}

	b.yielded += len(records)

	return Batch{
		Source:  b.Source(),
		Size:    len(records),
		Records: records,
	}, nil
}
