package seqio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// ErrNoQualities is returned when FASTQ output is requested for a read
// without qualities.
var ErrNoQualities = fmt.Errorf("%w: FASTQ output needs qualities", ErrInvalid)

// Writer appends reads to an output stream in FASTA or FASTQ form.
type Writer struct {
	bw     *bufio.Writer
	format Format
	count  int64
}

// NewWriter writes reads to w. Only FormatFASTA and FormatFASTQ are
// meaningful; anything else falls back to FASTQ.
func NewWriter(w io.Writer, format Format) *Writer {
	if format != FormatFASTA {
		format = FormatFASTQ
	}

	return &Writer{bw: bufio.NewWriter(w), format: format}
}

// OutputFormat picks the output format for path: its extension when it names
// FASTA or FASTQ, otherwise FASTQ if qualities are available and FASTA if not.
func OutputFormat(path string, qualities bool) Format {
	switch f := FormatFromPath(path); f {
	case FormatFASTA, FormatFASTQ:
		return f
	case FormatAuto, FormatSAM:
	}

	if qualities {
		return FormatFASTQ
	}

	return FormatFASTA
}

// Format reports the format being written.
func (w *Writer) Format() Format { return w.format }

// Count reports how many reads have been written.
func (w *Writer) Count() int64 { return w.count }

// Write appends one read. A colorspace read is written with its primer base
// restored in front of the color calls.
func (w *Writer) Write(read *seq.Read) error {
	sequence := read.Sequence
	if read.Primer != 0 {
		sequence = string(read.Primer) + sequence
	}

	var err error

	switch w.format {
	case FormatFASTQ:
		if !read.HasQualities() && read.Len() > 0 {
			return fmt.Errorf("read %q: %w", read.Name, ErrNoQualities)
		}

		_, err = fmt.Fprintf(w.bw, "@%s\n%s\n+\n%s\n", read.Name, sequence, read.Qualities)
	default:
		_, err = fmt.Fprintf(w.bw, ">%s\n%s\n", read.Name, sequence)
	}

	if err != nil {
		return fmt.Errorf("write read %q: %w", read.Name, err)
	}

	w.count++

	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	err := w.bw.Flush()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}
