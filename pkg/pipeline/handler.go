package pipeline

import (
	"context"
	"errors"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// Sentinel errors.
var (
	// ErrNotImplemented is returned by the base HandleReads of Unimplemented.
	ErrNotImplemented = errors.New("pipeline: HandleReads not implemented")
	// ErrMalformedBatch signals an upstream contract violation in a batch.
	ErrMalformedBatch = errors.New("pipeline: malformed batch")
)

// Report is the value a pipeline returns from Finish.
type Report = map[string]any

// Handler is the per-read extension point every concrete pipeline provides.
// read2 is nil for single-end data.
type Handler interface {
	HandleReads(ctx context.Context, batch *BatchContext, read1, read2 *seq.Read) error
}

// Starter is implemented by handlers needing setup before the first batch.
type Starter interface {
	Start(ctx context.Context, opts Options) error
}

// Finisher is implemented by handlers producing a result after the last batch.
// Finish runs only when every batch was processed successfully.
type Finisher interface {
	Finish(ctx context.Context) (Report, error)
}

// Unimplemented can be embedded by handlers that only need the hooks.
// Its HandleReads fails with ErrNotImplemented.
type Unimplemented struct{}

// HandleReads returns ErrNotImplemented.
func (Unimplemented) HandleReads(context.Context, *BatchContext, *seq.Read, *seq.Read) error {
	return ErrNotImplemented
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, batch *BatchContext, read1, read2 *seq.Read) error

// HandleReads calls f.
func (f HandlerFunc) HandleReads(ctx context.Context, batch *BatchContext, read1, read2 *seq.Read) error {
	return f(ctx, batch, read1, read2)
}
